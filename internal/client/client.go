// Package client is the HTTP client for the reverselearn API, used by the
// terminal client and anything else driving a session remotely.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"reverselearn/internal/model"
)

// Client calls the reverselearn API. The base URL is injected once at
// construction; nothing branches on environment deeper in.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a client for the API at baseURL (e.g. "http://localhost:8080")
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// SetToken attaches a bearer token to subsequent requests
func (c *Client) SetToken(token string) {
	c.token = token
}

// Signup creates an account and returns the server's confirmation message
func (c *Client) Signup(ctx context.Context, email, password string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	err := c.do(ctx, "POST", "/v1/auth/signup", model.SignupRequest{Email: email, Password: password}, &out)
	if err != nil {
		return "", err
	}
	return out.Message, nil
}

// Login exchanges credentials for a token
func (c *Client) Login(ctx context.Context, email, password string) (*model.LoginResponse, error) {
	var out model.LoginResponse
	err := c.do(ctx, "POST", "/v1/auth/login", model.LoginRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Analyze sends one user turn and returns the AI audience reply
func (c *Client) Analyze(ctx context.Context, req *model.AnalyzeRequest) (*model.AnalyzeResponse, error) {
	var out model.AnalyzeResponse
	if err := c.do(ctx, "POST", "/v1/analyze", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Transcribe uploads a WAV recording and returns its transcript
func (c *Client) Transcribe(ctx context.Context, recording []byte) (string, error) {
	body := &bytes.Buffer{}
	mp := multipart.NewWriter(body)
	part, err := mp.CreateFormFile("audio", "recorded.wav")
	if err != nil {
		return "", err
	}
	if _, err := part.Write(recording); err != nil {
		return "", err
	}
	if err := mp.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/transcribe", body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mp.FormDataContentType())
	c.authorize(req)

	var out model.TranscribeResponse
	if err := c.send(req, &out); err != nil {
		return "", err
	}
	return out.Transcript, nil
}

// ListChats returns the signed-in user's saved chats
func (c *Client) ListChats(ctx context.Context) ([]model.ChatSummary, error) {
	var out struct {
		Chats []model.ChatSummary `json:"chats"`
	}
	if err := c.do(ctx, "GET", "/v1/chats", nil, &out); err != nil {
		return nil, err
	}
	return out.Chats, nil
}

// SaveChat stores a session transcript and returns the new chat id
func (c *Client) SaveChat(ctx context.Context, sessionID string, messages []model.Message) (string, error) {
	payload := struct {
		SessionID string          `json:"sessionId"`
		Messages  []model.Message `json:"messages"`
	}{sessionID, messages}

	var out struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, "POST", "/v1/chats", payload, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// DeleteChat removes a saved chat
func (c *Client) DeleteChat(ctx context.Context, chatID string) error {
	return c.do(ctx, "DELETE", "/v1/chats/"+chatID, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	return c.send(req, out)
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) send(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

// apiError extracts the server's message/error field when present
func apiError(status int, body []byte) error {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Message != "" {
			return fmt.Errorf("%s", payload.Message)
		}
		if payload.Error != "" {
			return fmt.Errorf("%s", payload.Error)
		}
	}
	return fmt.Errorf("request failed with status %d", status)
}
