package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reverselearn/internal/config"
	"reverselearn/internal/model"
)

// CompletionService talks to an Azure-OpenAI-style chat completions
// deployment. Every method falls back to deterministic mock output when the
// API is not configured or a call fails, so the chat session never breaks.
type CompletionService struct {
	config *config.AIConfig
	client *http.Client
}

// NewCompletionService creates a new completion service
func NewCompletionService(cfg *config.AIConfig) *CompletionService {
	return &CompletionService{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// GenerateQuestions asks the simulated student for three follow-up questions
// about the teacher's explanation, tuned to the audience level.
func (s *CompletionService) GenerateQuestions(ctx context.Context, level model.AudienceLevel, text string) ([]string, error) {
	if !s.config.IsEnabled() {
		return mockQuestions(), nil
	}

	prompt := s.buildQuestionsPrompt(level)
	response, err := s.callChat(ctx, prompt, "Teacher says:\n\n"+text, 0, 300)
	if err != nil {
		return mockQuestions(), nil
	}

	var result struct {
		Questions []string `json:"questions"`
	}
	if err := json.Unmarshal([]byte(response), &result); err != nil || len(result.Questions) == 0 {
		return mockQuestions(), nil
	}
	return result.Questions, nil
}

// Summarize produces a student-voice summary of the whole session
func (s *CompletionService) Summarize(ctx context.Context, level model.AudienceLevel, history string) (string, []string, error) {
	if !s.config.IsEnabled() {
		return mockSummary()
	}

	prompt := s.buildSummaryPrompt(level)
	response, err := s.callChat(ctx, prompt, "My notes and teacher replies:\n\n"+history, 0, 500)
	if err != nil {
		return mockSummary()
	}

	var result struct {
		Summary   string   `json:"summary"`
		KeyPoints []string `json:"keyPoints"`
	}
	if err := json.Unmarshal([]byte(response), &result); err != nil || result.Summary == "" {
		return mockSummary()
	}
	return result.Summary, result.KeyPoints, nil
}

// ThankYou generates the wrap-up message after the question round ends
func (s *CompletionService) ThankYou(ctx context.Context) string {
	if !s.config.IsEnabled() {
		return mockThankYou
	}

	prompt := "You have now finished your questions. Send a natural, friendly thank-you message to the teacher."
	response, err := s.callChat(ctx, prompt, "Wrap up the session.", 0.5, 60)
	if err != nil || strings.TrimSpace(response) == "" {
		return mockThankYou
	}
	return strings.TrimSpace(response)
}

// AnalyzePresentation critiques a presentation transcript and returns the
// spoken summary plus the structured feedback.
func (s *CompletionService) AnalyzePresentation(ctx context.Context, level model.AudienceLevel, transcript string) (string, *model.Feedback, error) {
	if !s.config.IsEnabled() {
		return mockPresentation()
	}

	prompt := s.buildPresentationPrompt(level)
	response, err := s.callChat(ctx, prompt, "Transcript:\n\n"+transcript, 0, 1000)
	if err != nil {
		return mockPresentation()
	}

	// Optional-field shapes have drifted across deployments
	// (structureSuggestions as string or array); normalize here so the drift
	// never leaves this boundary.
	var result struct {
		Summary               string             `json:"summary"`
		Clarity               string             `json:"clarity"`
		Pacing                string             `json:"pacing"`
		StructureSuggestions  stringList         `json:"structureSuggestions"`
		DeliveryTips          stringList         `json:"deliveryTips"`
		Questions             []string           `json:"questions"`
		RephrasingSuggestions []model.Rephrasing `json:"rephrasingSuggestions"`
	}
	if err := json.Unmarshal([]byte(response), &result); err != nil || result.Summary == "" {
		return mockPresentation()
	}

	fb := &model.Feedback{
		Summary:               result.Summary,
		Clarity:               result.Clarity,
		Pacing:                result.Pacing,
		StructureSuggestions:  result.StructureSuggestions,
		DeliveryTips:          result.DeliveryTips,
		Questions:             result.Questions,
		RephrasingSuggestions: result.RephrasingSuggestions,
	}
	return result.Summary, fb.Normalize(), nil
}

// callChat makes a chat completions request and returns the reply text with
// any markdown code fence stripped.
func (s *CompletionService) callChat(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error) {
	reqBody := map[string]interface{}{
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"temperature": temperature,
		"max_tokens":  maxTokens,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.config.ChatCompletionsURL(), bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion API returned %d", resp.StatusCode)
	}

	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", err
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("empty response from completion API")
	}

	return stripCodeFence(chatResp.Choices[0].Message.Content), nil
}

// stripCodeFence removes a surrounding ```json ... ``` block if present
func stripCodeFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "```") {
		return raw
	}
	lines := strings.Split(raw, "\n")
	if len(lines) < 2 {
		return raw
	}
	return strings.TrimSpace(strings.Join(lines[1:len(lines)-1], "\n"))
}

// stringList accepts both a JSON string and a JSON array of strings
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	if one == "" {
		*l = []string{}
		return nil
	}
	*l = []string{one}
	return nil
}

// Prompt builders
func (s *CompletionService) buildQuestionsPrompt(level model.AudienceLevel) string {
	return fmt.Sprintf(`You are a curious student with %s level knowledge.
You just listened to a teacher explaining a concept.
Now, you must ask 3 relevant follow-up questions, based on your level of understanding:
- Beginner: Ask simple, basic clarification questions.
- Intermediate: Ask practical or conceptual questions.
- Expert: Ask analytical or critical thinking questions.

IMPORTANT: Return ONLY a JSON in this format: {"questions": ["question1", "question2", "question3"]}.
DO NOT thank the teacher. DO NOT conclude. JUST ask the 3 questions.`,
		strings.ToLower(string(level)))
}

func (s *CompletionService) buildSummaryPrompt(level model.AudienceLevel) string {
	return fmt.Sprintf(`You are a smart %s-level student summarizing what the teacher has explained.
Base your summary on BOTH the original explanation and your own questions + the teacher's answers.
Return only JSON: {"summary": ..., "keyPoints": [...]}`,
		strings.ToLower(string(level)))
}

func (s *CompletionService) buildPresentationPrompt(level model.AudienceLevel) string {
	return fmt.Sprintf(`You are an AI presentation coach analyzing a student's transcript.

Context:
- Audience Level: %s (Beginner needs simple explanations and analogies, Intermediate expects structured explanations with examples, Expert expects depth, critical analysis and domain vocabulary)

Tasks:
1. Detect filler words (um, uh, like, you know, etc.) and quantify frequency.
2. Identify [silence] markers as hesitations/pauses.
3. Analyze the overall structure: note strengths/weaknesses and propose a clearer outline.
4. Give specific tips to reduce fillers and improve pacing.
5. Generate three tailored comprehension questions for a %s audience.
6. Adjust the depth and tone of your critique to suit the audience level.
7. Suggest 1-3 sentences from the student's transcript that could be rephrased, and provide clearer or more professional alternatives.

Tone: Supportive, motivational, and professional. Focus on helping the student improve.

RETURN ONLY the raw JSON, with absolutely no explanation, markdown, or extra text.
{
  "summary": "...",
  "clarity": "...",
  "pacing": "...",
  "structureSuggestions": ["..."],
  "deliveryTips": ["..."],
  "questions": ["...", "...", "..."],
  "rephrasingSuggestions": [
    { "original": "...", "suggested": "..." }
  ]
}`, level, level)
}

// Mock fallbacks keep the session interactive when the API is unavailable

const mockThankYou = "Thank you for teaching me today! Your explanations really helped me understand the topic."

func mockQuestions() []string {
	return []string{
		"Can you explain how this relates to something I might already know?",
		"What are the practical applications of this?",
		"Could you walk through a concrete example step by step?",
	}
}

func mockSummary() (string, []string, error) {
	return "Here's what I understood from your explanation so far: you introduced the main idea, walked through how it works, and answered my follow-up questions.",
		[]string{
			"The main concept and why it matters",
			"How the concept works in practice",
			"Answers to the follow-up questions",
		}, nil
}

func mockPresentation() (string, *model.Feedback, error) {
	fb := &model.Feedback{
		Summary: "A solid walkthrough of the topic with a clear beginning and end.",
		Clarity: "Clear explanation overall, with some confusion points in the middle section.",
		Pacing:  "Good pace, consider slowing down in technical parts.",
		StructureSuggestions: []string{
			"Open with a one-sentence overview before diving into details.",
			"Group related points together instead of alternating between them.",
		},
		DeliveryTips: []string{
			"Pause briefly after key points instead of filling the gap.",
			"Try using more analogies for complex concepts.",
		},
		Questions: []string{
			"Can you explain how this relates to the bigger picture?",
			"What are the practical applications of this?",
			"What would you change if the constraints were different?",
		},
		RephrasingSuggestions: []model.Rephrasing{},
	}
	return fb.Summary, fb.Normalize(), nil
}
