// Package handlers implements the HTTP routes of the task dashboard.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/models"
	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/store"
	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/uploads"
	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/utils"
)

const defaultMaxUploadBytes = 32 << 20

// TokenIssuer signs a bearer token for a user id.
type TokenIssuer interface {
	GenerateJwt(userID string) (string, error)
}

// FileSaver persists uploaded files to blob storage.
type FileSaver interface {
	SaveAll(files []*multipart.FileHeader) ([]uploads.Stored, error)
}

// Handler carries the collaborators every route needs. It is built once at
// startup and shared across requests.
type Handler struct {
	Tasks          store.TaskStore
	Users          store.UserStore
	Tokens         TokenIssuer
	Uploads        FileSaver
	Logger         *slog.Logger
	MaxUploadBytes int64
	Now            func() time.Time
}

// Routes registers every route on mux. Routes other than health and the
// account endpoints are wrapped with auth.
func (h *Handler) Routes(mux *http.ServeMux, auth func(http.HandlerFunc) http.HandlerFunc) {
	mux.HandleFunc("GET /check", Check)

	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", h.Login)

	mux.HandleFunc("GET /api/tasks", auth(h.ListTasks))
	mux.HandleFunc("POST /api/tasks", auth(h.CreateTask))
	mux.HandleFunc("GET /api/tasks/{id}", auth(h.GetTask))
	mux.HandleFunc("PATCH /api/tasks/{id}/progress", auth(h.UpdateProgress))
	mux.HandleFunc("POST /api/tasks/{id}/submit", auth(h.SubmitTask))
	mux.HandleFunc("PATCH /api/tasks/{id}/assessment", auth(h.UpdateAssessment))

	mux.HandleFunc("GET /api/users", auth(h.ListUsers))
	mux.HandleFunc("GET /api/users/me", auth(h.CurrentUser))
	mux.HandleFunc("PATCH /api/users/me", auth(h.UpdateProfile))
}

func Check(w http.ResponseWriter, r *http.Request) {
	utils.ResponseWithJson(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) maxUploadBytes() int64 {
	if h.MaxUploadBytes > 0 {
		return h.MaxUploadBytes
	}
	return defaultMaxUploadBytes
}

// fail writes the response for err. resource names what a NotFound refers to.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, resource string) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		utils.ResponseWithDetails(w, http.StatusBadRequest, "Validation failed", verr.Fields)
	case errors.Is(err, store.ErrNotFound):
		utils.ResponseWithError(w, http.StatusNotFound, resource+" not found")
	case errors.Is(err, store.ErrDuplicate):
		utils.ResponseWithError(w, http.StatusConflict, resource+" already exists")
	case errors.Is(err, context.Canceled):
		// client went away; nothing useful to write
	default:
		h.Logger.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("err", err),
		)
		utils.ResponseWithError(w, http.StatusInternalServerError, "Server error")
	}
}
