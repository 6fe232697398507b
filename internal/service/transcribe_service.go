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

	"reverselearn/internal/audio"
	"reverselearn/internal/config"
)

// SimulatedTranscript is returned when no speech backend is configured
const SimulatedTranscript = "This is a simulated transcription of your speech input."

// TranscriptionService converts recorded audio to text. The recording is
// split on silence and each spoken chunk is recognized separately; silence
// boundaries show up in the transcript as [silence] markers so the analyzer
// can treat them as hesitations.
type TranscriptionService struct {
	config *config.SpeechConfig
	client *http.Client
}

// NewTranscriptionService creates a new transcription service
func NewTranscriptionService(cfg *config.SpeechConfig) *TranscriptionService {
	return &TranscriptionService{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// Transcribe converts a WAV recording to text
func (s *TranscriptionService) Transcribe(ctx context.Context, recording []byte) (string, error) {
	if !s.config.IsEnabled() {
		return SimulatedTranscript, nil
	}

	clip, err := audio.DecodeWAV(recording)
	if err != nil {
		return "", fmt.Errorf("decode recording: %w", err)
	}

	chunks := audio.SplitOnSilence(clip, audio.SplitOptions{
		MinSilenceMS:    500,
		SilenceThreshDB: clip.DBFS() - 16,
		KeepSilenceMS:   250,
	})
	if len(chunks) == 0 {
		chunks = []*audio.Clip{clip}
	}

	pieces := make([]string, 0, len(chunks)*2)
	for i, chunk := range chunks {
		text, err := s.recognize(ctx, chunk)
		if err != nil {
			return "", err
		}
		if text != "" {
			pieces = append(pieces, text)
		}
		if i < len(chunks)-1 {
			pieces = append(pieces, "[silence]")
		}
	}

	return strings.Join(pieces, " "), nil
}

// recognize sends one chunk to the short-audio recognition endpoint
func (s *TranscriptionService) recognize(ctx context.Context, chunk *audio.Clip) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", s.config.RecognizeURL(), bytes.NewReader(chunk.EncodeWAV()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", s.config.Key)
	req.Header.Set("Content-Type", fmt.Sprintf("audio/wav; codecs=audio/pcm; samplerate=%d", chunk.SampleRate))
	req.Header.Set("Accept", "application/json")

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
		return "", fmt.Errorf("speech API returned %d", resp.StatusCode)
	}

	var result struct {
		RecognitionStatus string `json:"RecognitionStatus"`
		DisplayText       string `json:"DisplayText"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}

	// NoMatch and friends mean the chunk held no recognizable speech
	if result.RecognitionStatus != "Success" {
		return "", nil
	}
	return strings.TrimSpace(result.DisplayText), nil
}
