package service

import (
	"context"
	"errors"
	"strings"

	"reverselearn/internal/model"
	"reverselearn/internal/repository"
)

var ErrChatNotFound = errors.New("chat not found")

const (
	titleMaxLen   = 60
	previewMaxLen = 100
)

// ChatService manages saved session transcripts
type ChatService struct {
	chats repository.ChatRepo
}

// NewChatService creates a new chat service
func NewChatService(chats repository.ChatRepo) *ChatService {
	return &ChatService{chats: chats}
}

// Save stores a session transcript for the user. The title comes from the
// first user message and the preview from the last message.
func (s *ChatService) Save(ctx context.Context, userID, sessionID string, messages []model.Message) (string, error) {
	chat := &model.Chat{
		UserID:    userID,
		SessionID: sessionID,
		Title:     deriveTitle(messages),
		Preview:   derivePreview(messages),
		Messages:  messages,
	}
	return s.chats.Create(ctx, chat)
}

// List returns the user's saved chats, newest first
func (s *ChatService) List(ctx context.Context, userID string) ([]model.ChatSummary, error) {
	chats, err := s.chats.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]model.ChatSummary, 0, len(chats))
	for _, chat := range chats {
		summaries = append(summaries, model.ChatSummary{
			ID:        chat.ID,
			Title:     chat.Title,
			Preview:   chat.Preview,
			Timestamp: chat.UpdatedAt,
		})
	}
	return summaries, nil
}

// Delete removes one of the user's chats. Deleting someone else's chat
// reports not-found, same as an unknown id.
func (s *ChatService) Delete(ctx context.Context, userID, chatID string) error {
	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return ErrChatNotFound
	}
	if chat == nil || chat.UserID != userID {
		return ErrChatNotFound
	}
	return s.chats.Delete(ctx, chatID)
}

func deriveTitle(messages []model.Message) string {
	for _, m := range messages {
		if m.Sender == model.SenderUser && strings.TrimSpace(m.Content) != "" {
			return truncate(strings.TrimSpace(m.Content), titleMaxLen)
		}
	}
	return "New chat"
}

func derivePreview(messages []model.Message) string {
	if len(messages) == 0 {
		return ""
	}
	return truncate(strings.TrimSpace(messages[len(messages)-1].Content), previewMaxLen)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
