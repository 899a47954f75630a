package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/middleware"
	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/models"
	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/store"
	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/uploads"
	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/utils"
)

type testServer struct {
	mux     *http.ServeMux
	mem     *store.Memory
	tokens  *utils.JWT
	uploads *uploads.Disk
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	tokens, err := utils.NewJWT("test-secret-key-1234567890", time.Hour)
	if err != nil {
		t.Fatalf("NewJWT: %v", err)
	}
	disk, err := uploads.NewDisk(t.TempDir())
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	mem := store.NewMemory()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := &Handler{
		Tasks:   mem.Tasks(),
		Users:   mem.Users(),
		Tokens:  tokens,
		Uploads: disk,
		Logger:  logger,
	}
	auth := &middleware.Auth{Tokens: tokens, Users: mem.Users(), Logger: logger}

	mux := http.NewServeMux()
	h.Routes(mux, auth.AuthMiddleware)
	return &testServer{mux: mux, mem: mem, tokens: tokens, uploads: disk}
}

// addUser stores a user directly and returns it with a bearer token.
func (s *testServer) addUser(t *testing.T, name, email string) (models.User, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	u := &models.User{Name: name, Email: email, Password: string(hash), Avatar: name + ".png"}
	if err := s.mem.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	token, err := s.tokens.GenerateJwt(u.ID.Hex())
	if err != nil {
		t.Fatalf("GenerateJwt: %v", err)
	}
	return *u, token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.mux.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
	return v
}

func expectStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rr.Code, rr.Body.String())
	}
}

func logoTask(extra map[string]any) map[string]any {
	body := map[string]any{
		"title":       "Logo",
		"category":    "Graphics Design",
		"dueDate":     "2025-01-01",
		"timeLimit":   10,
		"description": "...",
	}
	for k, v := range extra {
		body[k] = v
	}
	return body
}

// createTask creates a task as the given token and returns its view.
func (s *testServer) createTask(t *testing.T, token string, extra map[string]any) TaskView {
	t.Helper()
	rr := s.do(t, http.MethodPost, "/api/tasks", token, logoTask(extra))
	expectStatus(t, rr, http.StatusCreated)
	return decode[TaskView](t, rr)
}

// detailFields returns the rejected fields of a 400 response, keyed by name.
func detailFields(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	body := decode[struct {
		Details []models.FieldError `json:"details"`
	}](t, rr)
	fields := make(map[string]string, len(body.Details))
	for _, d := range body.Details {
		fields[d.Field] = d.Message
	}
	return fields
}
