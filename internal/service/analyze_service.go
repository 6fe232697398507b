package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"reverselearn/internal/cache"
	"reverselearn/internal/model"
)

var ErrUnknownMode = errors.New("unknown mode")

const fallbackQuestion = "What would you like to explain?"

// AnalyzeService implements the audience behavior behind POST /v1/analyze.
// Explain mode runs a question round per session: three audience questions
// generated from the first explanation, replayed one at a time as the teacher
// answers, then a thank-you. Presentation mode returns a structured critique
// of the transcript. Explain state lives in the cache and expires with the
// session.
type AnalyzeService struct {
	completion *CompletionService
	states     cache.ExplainStateCache
}

// NewAnalyzeService creates a new analyze service
func NewAnalyzeService(completion *CompletionService, states cache.ExplainStateCache) *AnalyzeService {
	return &AnalyzeService{
		completion: completion,
		states:     states,
	}
}

// Analyze handles one user turn
func (s *AnalyzeService) Analyze(ctx context.Context, req *model.AnalyzeRequest) (*model.AnalyzeResponse, error) {
	level := req.AudienceLevel
	if !level.Valid() {
		level = model.LevelBeginner
	}

	switch req.Mode {
	case model.ModeExplain:
		return s.analyzeExplain(ctx, req, level)
	case model.ModePresentation:
		return s.analyzePresentation(ctx, req, level)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownMode, req.Mode)
	}
}

func (s *AnalyzeService) analyzeExplain(ctx context.Context, req *model.AnalyzeRequest, level model.AudienceLevel) (*model.AnalyzeResponse, error) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = "default"
	}
	text := strings.TrimSpace(req.Message)

	state := s.loadState(ctx, sessionID)

	if req.Summarize {
		history := strings.TrimSpace(req.TranscriptSoFar)
		if len(state.TeacherResponses) > 0 {
			history += "\n\n" + strings.Join(state.TeacherResponses, "\n\n")
		}
		summary, keyPoints, err := s.completion.Summarize(ctx, level, history)
		if err != nil {
			return nil, err
		}
		return response(summary, &model.Feedback{Questions: keyPoints}), nil
	}

	// First explanation of a round: generate the audience questions
	if len(state.PendingQuestions) == 0 {
		questions, err := s.completion.GenerateQuestions(ctx, level, text)
		if err != nil {
			return nil, err
		}

		state.PendingQuestions = questions
		state.QuestionIndex = 1
		state.TeacherResponses = nil
		s.saveState(ctx, sessionID, state)

		first := fallbackQuestion
		if len(questions) > 0 {
			first = questions[0]
		}
		return response(first, &model.Feedback{Questions: []string{first}}), nil
	}

	// The teacher answered the previous question
	state.TeacherResponses = append(state.TeacherResponses, text)

	if state.QuestionIndex < len(state.PendingQuestions) {
		next := state.PendingQuestions[state.QuestionIndex]
		state.QuestionIndex++
		s.saveState(ctx, sessionID, state)
		return response(next, &model.Feedback{Questions: []string{next}}), nil
	}

	// Round exhausted: thank the teacher and clear the round so the next
	// explanation starts fresh. Answers are kept for summarize.
	thanks := s.completion.ThankYou(ctx)
	state.PendingQuestions = nil
	state.QuestionIndex = 0
	s.saveState(ctx, sessionID, state)
	return response(thanks, &model.Feedback{Questions: []string{}}), nil
}

func (s *AnalyzeService) analyzePresentation(ctx context.Context, req *model.AnalyzeRequest, level model.AudienceLevel) (*model.AnalyzeResponse, error) {
	summary, fb, err := s.completion.AnalyzePresentation(ctx, level, req.Message)
	if err != nil {
		return nil, err
	}
	return response(summary, fb), nil
}

// Cache failures are absorbed: the session degrades to a fresh question
// round instead of failing the request.
func (s *AnalyzeService) loadState(ctx context.Context, sessionID string) *model.ExplainState {
	state, err := s.states.Get(ctx, sessionID)
	if err != nil {
		log.Printf("explain state load failed for session %s: %v", sessionID, err)
	}
	if state == nil {
		state = &model.ExplainState{}
	}
	return state
}

func (s *AnalyzeService) saveState(ctx context.Context, sessionID string, state *model.ExplainState) {
	if err := s.states.Set(ctx, sessionID, state); err != nil {
		log.Printf("explain state save failed for session %s: %v", sessionID, err)
	}
}

func response(message string, fb *model.Feedback) *model.AnalyzeResponse {
	return &model.AnalyzeResponse{
		Message:  message,
		Feedback: fb.Normalize(),
	}
}
