package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/models"
	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/store"
	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/utils"
)

const userResource = "User"

type registerRequest struct {
	Name     string `json:"name" validate:"required,notblank"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    *models.User `json:"user"`
}

// Register creates an account and returns a token for it.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := models.ValidateStruct(req); err != nil {
		h.fail(w, r, err, userResource)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.fail(w, r, err, userResource)
		return
	}

	now := h.now()
	user := &models.User{
		Name:      strings.TrimSpace(req.Name),
		Email:     req.Email,
		Password:  string(hashedPassword),
		Skills:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.Users.Create(r.Context(), user); err != nil {
		h.fail(w, r, err, userResource)
		return
	}

	h.respondWithToken(w, r, http.StatusCreated, "User registered successfully", user)
}

// Login exchanges email and password for a token. Unknown emails and wrong
// passwords get the same answer.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	user, err := h.Users.GetByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		utils.ResponseWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err != nil {
		h.fail(w, r, err, userResource)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		utils.ResponseWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	h.respondWithToken(w, r, http.StatusOK, "Login successful", user)
}

func (h *Handler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, msg string, user *models.User) {
	token, err := h.Tokens.GenerateJwt(user.ID.Hex())
	if err != nil {
		h.fail(w, r, err, userResource)
		return
	}
	user.Password = ""
	utils.ResponseWithJson(w, status, authResponse{Message: msg, Token: token, User: user})
}
