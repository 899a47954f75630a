package utils

import (
	"encoding/json"
	"net/http"
)

func ResponseWithJson(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func ResponseWithError(w http.ResponseWriter, status int, message string) {
	ResponseWithJson(w, status, map[string]string{"message": message})
}

// ResponseWithDetails writes an error message together with structured
// details, e.g. the rejected fields of a payload.
func ResponseWithDetails(w http.ResponseWriter, status int, message string, details any) {
	ResponseWithJson(w, status, map[string]any{"message": message, "details": details})
}
