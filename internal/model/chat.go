package model

import "time"

// Chat is a saved session transcript owned by a user
type Chat struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	UserID    string    `json:"userId" bson:"userId"`
	SessionID string    `json:"sessionId" bson:"sessionId"`
	Title     string    `json:"title" bson:"title"`
	Preview   string    `json:"preview" bson:"preview"`
	Messages  []Message `json:"messages" bson:"messages"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// ChatSummary is the list-view projection of a saved chat
type ChatSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Preview   string    `json:"preview"`
	Timestamp time.Time `json:"timestamp"`
}

// ExplainState is the per-session memory for Explain mode: the current round
// of audience questions and the teacher's answers so far.
type ExplainState struct {
	QuestionIndex    int      `json:"questionIndex"`
	PendingQuestions []string `json:"pendingQuestions"`
	TeacherResponses []string `json:"teacherResponses"`
}
