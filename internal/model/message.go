package model

import "time"

// AudienceLevel is the expertise level of the simulated audience
type AudienceLevel string

const (
	LevelBeginner     AudienceLevel = "Beginner"
	LevelIntermediate AudienceLevel = "Intermediate"
	LevelExpert       AudienceLevel = "Expert"
)

// Valid reports whether the level is one of the known values
func (l AudienceLevel) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelExpert:
		return true
	}
	return false
}

// Mode selects how the AI audience responds
type Mode string

const (
	ModeExplain      Mode = "Explain"
	ModePresentation Mode = "Presentation"
)

// Valid reports whether the mode is one of the known values
func (m Mode) Valid() bool {
	return m == ModeExplain || m == ModePresentation
}

// Sender identifies who authored a message
type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// Message is one chat bubble. Messages are immutable once created and
// appended to a session's ordered sequence.
type Message struct {
	ID        string    `json:"id" bson:"id"`
	Content   string    `json:"content" bson:"content"`
	Sender    Sender    `json:"sender" bson:"sender"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Feedback  *Feedback `json:"feedback,omitempty" bson:"feedback,omitempty"`
}

// Rephrasing pairs a sentence from the transcript with a clearer alternative
type Rephrasing struct {
	Original  string `json:"original" bson:"original"`
	Suggested string `json:"suggested" bson:"suggested"`
}

// Feedback is the structured critique attached to AI messages. Which fields
// are present is decided by the completion service; Normalize keeps the
// optional sequences non-nil so server-shape drift never leaks into stored
// state.
type Feedback struct {
	Summary               string       `json:"summary,omitempty" bson:"summary,omitempty"`
	Clarity               string       `json:"clarity,omitempty" bson:"clarity,omitempty"`
	Pacing                string       `json:"pacing,omitempty" bson:"pacing,omitempty"`
	StructureSuggestions  []string     `json:"structureSuggestions" bson:"structureSuggestions"`
	DeliveryTips          []string     `json:"deliveryTips" bson:"deliveryTips"`
	RephrasingSuggestions []Rephrasing `json:"rephrasingSuggestions" bson:"rephrasingSuggestions"`
	Questions             []string     `json:"questions" bson:"questions"`
	Gaps                  string       `json:"gaps,omitempty" bson:"gaps,omitempty"`
	ClarificationTip      string       `json:"clarificationTip,omitempty" bson:"clarificationTip,omitempty"`
}

// Normalize replaces nil sequences with empty ones
func (f *Feedback) Normalize() *Feedback {
	if f == nil {
		return nil
	}
	if f.StructureSuggestions == nil {
		f.StructureSuggestions = []string{}
	}
	if f.DeliveryTips == nil {
		f.DeliveryTips = []string{}
	}
	if f.RephrasingSuggestions == nil {
		f.RephrasingSuggestions = []Rephrasing{}
	}
	if f.Questions == nil {
		f.Questions = []string{}
	}
	return f
}
