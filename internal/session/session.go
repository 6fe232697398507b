// Package session implements the chat session state machine: an append-only
// message sequence, the expanded-feedback set and the single in-flight send.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"reverselearn/internal/model"
)

// ErrSendInFlight is returned when a send is attempted while another is
// pending. Overlapping sends are rejected rather than queued so completions
// can never interleave out of order.
var ErrSendInFlight = errors.New("a message is already being sent")

const (
	// ApologyMessage replaces the AI reply when a send fails
	ApologyMessage = "Sorry, I'm having trouble processing your request right now. Please try again later."

	// TranscriptionFailedMessage is placed in the input buffer when
	// transcription fails
	TranscriptionFailedMessage = "Transcription failed. Please try again."
)

// Analyzer produces the AI audience reply for one user turn
type Analyzer interface {
	Analyze(ctx context.Context, req *model.AnalyzeRequest) (*model.AnalyzeResponse, error)
}

// Transcriber converts a recorded audio clip to text
type Transcriber interface {
	Transcribe(ctx context.Context, recording []byte) (string, error)
}

// Session owns one conversation: its id, ordered messages and expanded set.
// All mutation is appending; switching level, mode or session discards the
// state entirely via Reset.
type Session struct {
	mu sync.Mutex

	analyzer    Analyzer
	transcriber Transcriber

	id       string
	level    model.AudienceLevel
	mode     model.Mode
	messages []model.Message
	expanded map[string]struct{}
	sending  bool

	// epoch invalidates in-flight sends across resets
	epoch int
}

// New creates a session seeded with the greeting message
func New(level model.AudienceLevel, mode model.Mode, analyzer Analyzer, transcriber Transcriber) *Session {
	s := &Session{
		analyzer:    analyzer,
		transcriber: transcriber,
	}
	s.Reset(level, mode)
	return s
}

// ID returns the current session identifier
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Level returns the current audience level
func (s *Session) Level() model.AudienceLevel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

// Mode returns the current mode
func (s *Session) Mode() model.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Messages returns a copy of the message sequence
func (s *Session) Messages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Typing reports whether a send is in flight
func (s *Session) Typing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sending
}

// IsExpanded reports whether the message's feedback panel is open
func (s *Session) IsExpanded(messageID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.expanded[messageID]
	return ok
}

// ToggleExpand flips the expanded state of a message's feedback panel
func (s *Session) ToggleExpand(messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.expanded[messageID]; ok {
		delete(s.expanded, messageID)
	} else {
		s.expanded[messageID] = struct{}{}
	}
}

// Send appends the user message, asks the analyzer for the reply and appends
// it. Empty or whitespace-only text is a no-op. Failures append the fixed
// apology message instead; the error is absorbed. The returned message is the
// appended AI message, or nil for a no-op.
func (s *Session) Send(ctx context.Context, text string) (*model.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	s.mu.Lock()
	if s.sending {
		s.mu.Unlock()
		return nil, ErrSendInFlight
	}
	s.sending = true
	epoch := s.epoch

	// transcriptSoFar covers user messages before this one
	summarize := s.mode == model.ModeExplain &&
		strings.HasPrefix(strings.ToLower(strings.TrimSpace(text)), "summarize")
	var transcriptSoFar string
	if summarize {
		var prior []string
		for _, m := range s.messages {
			if m.Sender == model.SenderUser {
				prior = append(prior, m.Content)
			}
		}
		transcriptSoFar = strings.Join(prior, "\n\n")
	}

	req := &model.AnalyzeRequest{
		Message:         text,
		AudienceLevel:   s.level,
		Mode:            s.mode,
		SessionID:       s.id,
		Summarize:       summarize,
		TranscriptSoFar: transcriptSoFar,
	}

	s.messages = append(s.messages, model.Message{
		ID:        uuid.NewString(),
		Content:   text,
		Sender:    model.SenderUser,
		Timestamp: time.Now(),
	})
	s.mu.Unlock()

	resp, err := s.analyzer.Analyze(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		// Session was reset while the request was in flight; drop the result
		return nil, nil
	}
	s.sending = false

	ai := model.Message{
		ID:        uuid.NewString(),
		Sender:    model.SenderAI,
		Timestamp: time.Now(),
	}
	if err != nil || resp == nil {
		if err != nil {
			log.Printf("analyze failed: %v", err)
		}
		ai.Content = ApologyMessage
	} else {
		ai.Content = resp.Message
		ai.Feedback = resp.Feedback.Normalize()
		s.expanded[ai.ID] = struct{}{}
	}
	s.messages = append(s.messages, ai)
	return &ai, nil
}

// Reset discards the message history and starts a fresh session with a new
// identifier and greeting. Any in-flight send stops being reflected.
func (s *Session) Reset(level model.AudienceLevel, mode model.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.sending = false
	s.id = uuid.NewString()
	s.level = level
	s.mode = mode
	s.expanded = make(map[string]struct{})
	s.messages = []model.Message{greeting(level)}
}

// TranscribeAudio converts a recording to text for the input buffer. It never
// appends a message; the caller lets the user edit the result before sending.
func (s *Session) TranscribeAudio(ctx context.Context, recording []byte) string {
	if s.transcriber == nil {
		return TranscriptionFailedMessage
	}
	transcript, err := s.transcriber.Transcribe(ctx, recording)
	if err != nil {
		log.Printf("transcription failed: %v", err)
		return TranscriptionFailedMessage
	}
	return transcript
}

func greeting(level model.AudienceLevel) model.Message {
	fb := &model.Feedback{
		Clarity:   "Ready to learn!",
		Pacing:    "Let's go at your pace",
		Questions: []string{"What topic would you like to explain?"},
	}
	return model.Message{
		ID: uuid.NewString(),
		Content: fmt.Sprintf("I'm your AI audience at the %s level. "+
			"I'll listen, ask questions, and give feedback on your explanations. "+
			"What would you like to teach me today?", level),
		Sender:    model.SenderAI,
		Timestamp: time.Now(),
		Feedback:  fb.Normalize(),
	}
}
