package api

import (
	"encoding/json"
	"net/http"

	"github.com/openbill/openbill/utils"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// writeError maps service errors onto the wire: API errors keep their status
// and message, anything else is a 500.
func writeError(w http.ResponseWriter, err error) {
	status := utils.GetHTTPStatusFromError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}
	writeJSON(w, status, ErrorResponse{Error: message})
}
