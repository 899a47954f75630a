package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/middleware"
	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/models"
	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/utils"
)

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context())
	if err != nil {
		h.fail(w, r, err, userResource)
		return
	}
	utils.ResponseWithJson(w, http.StatusOK, users)
}

func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	utils.ResponseWithJson(w, http.StatusOK, user)
}

// UpdateProfile changes name, skills and avatar of the authenticated user.
// Omitted fields keep their value.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var p models.Profile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		utils.ResponseWithError(w, http.StatusBadRequest, "Invalid request")
		return
	}
	if err := p.Validate(); err != nil {
		h.fail(w, r, err, userResource)
		return
	}

	updated, err := h.Users.UpdateProfile(r.Context(), user.ID, p)
	if err != nil {
		h.fail(w, r, err, userResource)
		return
	}
	utils.ResponseWithJson(w, http.StatusOK, updated)
}
