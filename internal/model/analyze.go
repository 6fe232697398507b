package model

// AnalyzeRequest is the payload sent for every user turn
type AnalyzeRequest struct {
	Message         string        `json:"message,omitempty"`
	AudienceLevel   AudienceLevel `json:"audienceLevel"`
	Mode            Mode          `json:"mode"`
	SessionID       string        `json:"sessionId"`
	Summarize       bool          `json:"summarize,omitempty"`
	TranscriptSoFar string        `json:"transcriptSoFar,omitempty"`
}

// AnalyzeResponse is the AI audience reply plus its structured critique
type AnalyzeResponse struct {
	Message  string    `json:"message"`
	Feedback *Feedback `json:"feedback,omitempty"`
}

// TranscribeResponse carries the transcript of an uploaded recording
type TranscribeResponse struct {
	Transcript string `json:"transcript"`
}
