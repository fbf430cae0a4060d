package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"batteryhub/backend/services/battery-service/internal/service"
)

const errorPrefix = "Server Error: "

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": errorPrefix + message})
}

// writeServiceError maps service failures to responses. Storage details never reach the client.
func writeServiceError(w http.ResponseWriter, err error) {
	var svcErr *service.Error
	if errors.Is(err, service.ErrInvalidRequest) && errors.As(err, &svcErr) {
		writeError(w, http.StatusBadRequest, svcErr.Message)
		return
	}
	writeError(w, http.StatusInternalServerError, "internal server error")
}
