package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"reverselearn/internal/config"
	"reverselearn/internal/model"
	"reverselearn/internal/service"
	"reverselearn/internal/transport/ws"
)

type memUserRepo struct {
	byEmail map[string]*model.User
	nextID  int
}

func (r *memUserRepo) Create(ctx context.Context, user *model.User) (string, error) {
	r.nextID++
	user.ID = "user-" + strconv.Itoa(r.nextID)
	r.byEmail[user.Email] = user
	return user.ID, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.byEmail[email], nil
}

type memChatRepo struct {
	byID   map[string]*model.Chat
	nextID int
}

func (r *memChatRepo) Create(ctx context.Context, chat *model.Chat) (string, error) {
	r.nextID++
	chat.ID = "chat-" + strconv.Itoa(r.nextID)
	chat.CreatedAt = time.Now()
	chat.UpdatedAt = chat.CreatedAt
	r.byID[chat.ID] = chat
	return chat.ID, nil
}

func (r *memChatRepo) GetByID(ctx context.Context, id string) (*model.Chat, error) {
	return r.byID[id], nil
}

func (r *memChatRepo) ListByUser(ctx context.Context, userID string) ([]*model.Chat, error) {
	var chats []*model.Chat
	for _, chat := range r.byID {
		if chat.UserID == userID {
			chats = append(chats, chat)
		}
	}
	return chats, nil
}

func (r *memChatRepo) Delete(ctx context.Context, id string) error {
	delete(r.byID, id)
	return nil
}

type memExplainCache struct {
	states map[string]*model.ExplainState
}

func (c *memExplainCache) Get(ctx context.Context, sessionID string) (*model.ExplainState, error) {
	return c.states[sessionID], nil
}

func (c *memExplainCache) Set(ctx context.Context, sessionID string, state *model.ExplainState) error {
	c.states[sessionID] = state
	return nil
}

func (c *memExplainCache) Delete(ctx context.Context, sessionID string) error {
	delete(c.states, sessionID)
	return nil
}

// newTestServer wires the full router against in-memory repositories and
// unconfigured (mock-mode) AI services.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	container := &Container{
		AuthService: service.NewAuthService(
			&memUserRepo{byEmail: make(map[string]*model.User)}, "test-secret", time.Hour),
		AnalyzeService: service.NewAnalyzeService(
			service.NewCompletionService(&config.AIConfig{TimeoutMS: 1000}),
			&memExplainCache{states: make(map[string]*model.ExplainState)}),
		TranscriptionService: service.NewTranscriptionService(
			&config.SpeechConfig{TimeoutMS: 1000}),
		ChatService: service.NewChatService(
			&memChatRepo{byID: make(map[string]*model.Chat)}),
		WSHub: ws.NewHub(),
	}

	srv := httptest.NewServer(NewRouter(container))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body interface{}, token string) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req, err := http.NewRequest("POST", url, bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func signupAndLogin(t *testing.T, srv *httptest.Server, email string) string {
	t.Helper()
	resp := postJSON(t, srv.URL+"/v1/auth/signup", model.SignupRequest{Email: email, Password: "pw123456"}, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status = %d", resp.StatusCode)
	}

	resp = postJSON(t, srv.URL+"/v1/auth/login", model.LoginRequest{Email: email, Password: "pw123456"}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
	var login model.LoginResponse
	decodeBody(t, resp, &login)
	if login.Token == "" {
		t.Fatal("login returned no token")
	}
	return login.Token
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestSignupAndLoginFlow(t *testing.T) {
	srv := newTestServer(t)
	signupAndLogin(t, srv, "teacher@example.com")

	// Duplicate signup is a client error with a message body
	resp := postJSON(t, srv.URL+"/v1/auth/signup",
		model.SignupRequest{Email: "teacher@example.com", Password: "other"}, "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("duplicate signup status = %d", resp.StatusCode)
	}
	var body struct {
		Message string `json:"message"`
	}
	decodeBody(t, resp, &body)
	if body.Message == "" {
		t.Error("duplicate signup should explain itself")
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	srv := newTestServer(t)
	signupAndLogin(t, srv, "teacher@example.com")

	resp := postJSON(t, srv.URL+"/v1/auth/login",
		model.LoginRequest{Email: "teacher@example.com", Password: "wrong"}, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/analyze", model.AnalyzeRequest{
		Message:       "plants turn sunlight into energy",
		AudienceLevel: model.LevelBeginner,
		Mode:          model.ModeExplain,
		SessionID:     "http-test",
	}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var analyzed model.AnalyzeResponse
	decodeBody(t, resp, &analyzed)
	if analyzed.Message == "" {
		t.Error("response should carry the audience question")
	}
	if analyzed.Feedback == nil || len(analyzed.Feedback.Questions) != 1 {
		t.Errorf("feedback = %+v", analyzed.Feedback)
	}
}

func TestAnalyzeRejectsUnknownMode(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/analyze", map[string]string{
		"message": "hi", "mode": "Karaoke",
	}, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestTranscribeEndpoint(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("audio", "recorded.wav")
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("RIFF fake wav payload"))
	mw.Close()

	req, err := http.NewRequest("POST", srv.URL+"/v1/transcribe", &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	// The speech backend is unconfigured, so the simulated transcript comes back
	var tr model.TranscribeResponse
	decodeBody(t, resp, &tr)
	if tr.Transcript != service.SimulatedTranscript {
		t.Errorf("transcript = %q", tr.Transcript)
	}
}

func TestTranscribeWithoutFileIsBadRequest(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/v1/transcribe", map[string]string{"audio": "nope"}, "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestChatsRequireAuth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/v1/chats")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated list status = %d, want 401", resp.StatusCode)
	}

	resp = postJSON(t, srv.URL+"/v1/chats", map[string]string{}, "garbage-token")
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", resp.StatusCode)
	}
}

func TestChatsSaveListDelete(t *testing.T) {
	srv := newTestServer(t)
	token := signupAndLogin(t, srv, "teacher@example.com")

	messages := []model.Message{
		{ID: "m1", Content: "How do vaccines work?", Sender: model.SenderUser, Timestamp: time.Now()},
		{ID: "m2", Content: "Great question!", Sender: model.SenderAI, Timestamp: time.Now()},
	}

	resp := postJSON(t, srv.URL+"/v1/chats", map[string]interface{}{
		"sessionId": "sess-1", "messages": messages,
	}, token)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("save status = %d", resp.StatusCode)
	}
	var saved struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &saved)
	if saved.ID == "" {
		t.Fatal("save returned no id")
	}

	req, _ := http.NewRequest("GET", srv.URL+"/v1/chats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	var listed struct {
		Chats []model.ChatSummary `json:"chats"`
	}
	decodeBody(t, resp, &listed)
	if len(listed.Chats) != 1 {
		t.Fatalf("expected 1 chat, got %d", len(listed.Chats))
	}
	if listed.Chats[0].Title != "How do vaccines work?" {
		t.Errorf("title = %q", listed.Chats[0].Title)
	}

	req, _ = http.NewRequest("DELETE", srv.URL+"/v1/chats/"+saved.ID, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("delete status = %d", resp.StatusCode)
	}

	// Second delete reports not-found
	req, _ = http.NewRequest("DELETE", srv.URL+"/v1/chats/"+saved.ID, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("repeat delete status = %d, want 404", resp.StatusCode)
	}
}

func TestDeleteForeignChatIsNotFound(t *testing.T) {
	srv := newTestServer(t)
	owner := signupAndLogin(t, srv, "owner@example.com")
	other := signupAndLogin(t, srv, "other@example.com")

	resp := postJSON(t, srv.URL+"/v1/chats", map[string]interface{}{
		"sessionId": "sess-1",
		"messages": []model.Message{
			{ID: "m1", Content: "secret notes", Sender: model.SenderUser, Timestamp: time.Now()},
		},
	}, owner)
	var saved struct {
		ID string `json:"id"`
	}
	decodeBody(t, resp, &saved)

	req, _ := http.NewRequest("DELETE", srv.URL+"/v1/chats/"+saved.ID, nil)
	req.Header.Set("Authorization", "Bearer "+other)
	got, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	got.Body.Close()
	if got.StatusCode != http.StatusNotFound {
		t.Errorf("foreign delete status = %d, want 404", got.StatusCode)
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	srv := newTestServer(t)

	req, _ := http.NewRequest("OPTIONS", srv.URL+"/v1/analyze", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("preflight status = %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") == "" {
		t.Error("preflight should carry CORS headers")
	}
}
