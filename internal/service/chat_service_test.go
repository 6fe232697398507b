package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"reverselearn/internal/model"
)

type fakeChatRepo struct {
	byID   map[string]*model.Chat
	nextID int
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{byID: make(map[string]*model.Chat)}
}

func (r *fakeChatRepo) Create(ctx context.Context, chat *model.Chat) (string, error) {
	r.nextID++
	chat.ID = "chat-" + strconv.Itoa(r.nextID)
	chat.UpdatedAt = time.Now()
	r.byID[chat.ID] = chat
	return chat.ID, nil
}

func (r *fakeChatRepo) GetByID(ctx context.Context, id string) (*model.Chat, error) {
	return r.byID[id], nil
}

func (r *fakeChatRepo) ListByUser(ctx context.Context, userID string) ([]*model.Chat, error) {
	var chats []*model.Chat
	for _, chat := range r.byID {
		if chat.UserID == userID {
			chats = append(chats, chat)
		}
	}
	return chats, nil
}

func (r *fakeChatRepo) Delete(ctx context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

func userMsg(content string) model.Message {
	return model.Message{Content: content, Sender: model.SenderUser, Timestamp: time.Now()}
}

func aiMsg(content string) model.Message {
	return model.Message{Content: content, Sender: model.SenderAI, Timestamp: time.Now()}
}

func TestSaveDerivesTitleAndPreview(t *testing.T) {
	repo := newFakeChatRepo()
	svc := NewChatService(repo)

	id, err := svc.Save(context.Background(), "u1", "sess", []model.Message{
		aiMsg("Hello! What would you like to explain?"),
		userMsg("  How do vaccines work?  "),
		aiMsg("Can you explain how this relates to something I might already know?"),
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	chat := repo.byID[id]
	if chat.Title != "How do vaccines work?" {
		t.Errorf("title = %q, want first user message", chat.Title)
	}
	if chat.Preview != "Can you explain how this relates to something I might already know?" {
		t.Errorf("preview = %q, want last message", chat.Preview)
	}
}

func TestSaveTruncatesLongTitle(t *testing.T) {
	repo := newFakeChatRepo()
	svc := NewChatService(repo)

	long := strings.Repeat("immunology ", 20)
	id, err := svc.Save(context.Background(), "u1", "sess", []model.Message{userMsg(long)})
	if err != nil {
		t.Fatal(err)
	}

	title := repo.byID[id].Title
	if got := len([]rune(title)); got > 60 {
		t.Errorf("title length = %d runes, want <= 60", got)
	}
	if !strings.HasSuffix(title, "…") {
		t.Errorf("truncated title should end with an ellipsis, got %q", title)
	}
}

func TestSaveWithoutUserMessageFallsBack(t *testing.T) {
	repo := newFakeChatRepo()
	svc := NewChatService(repo)

	id, err := svc.Save(context.Background(), "u1", "sess", []model.Message{aiMsg("greeting only")})
	if err != nil {
		t.Fatal(err)
	}
	if repo.byID[id].Title != "New chat" {
		t.Errorf("title = %q, want fallback", repo.byID[id].Title)
	}
}

func TestListScopedToUser(t *testing.T) {
	repo := newFakeChatRepo()
	svc := NewChatService(repo)
	ctx := context.Background()

	if _, err := svc.Save(ctx, "u1", "s1", []model.Message{userMsg("mine")}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Save(ctx, "u2", "s2", []model.Message{userMsg("theirs")}); err != nil {
		t.Fatal(err)
	}

	chats, err := svc.List(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(chats) != 1 || chats[0].Title != "mine" {
		t.Errorf("chats = %+v", chats)
	}
}

func TestDeleteChecksOwnership(t *testing.T) {
	repo := newFakeChatRepo()
	svc := NewChatService(repo)
	ctx := context.Background()

	id, err := svc.Save(ctx, "u1", "s1", []model.Message{userMsg("mine")})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.Delete(ctx, "u2", id); !errors.Is(err, ErrChatNotFound) {
		t.Errorf("foreign delete: expected ErrChatNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, "u1", "no-such-id"); !errors.Is(err, ErrChatNotFound) {
		t.Errorf("unknown id: expected ErrChatNotFound, got %v", err)
	}
	if err := svc.Delete(ctx, "u1", id); err != nil {
		t.Errorf("owner delete failed: %v", err)
	}
	if repo.byID[id] != nil {
		t.Error("chat should be gone")
	}
}
