// Package api holds the JSON request and response shapes of the HTTP surface.
package api

import (
	"encoding/json"
	"net/http"

	"blog-platform/internal/utils"
)

// ServerErrorMessage is the only text a client ever sees for an unexpected failure.
const ServerErrorMessage = "Server error"

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError renders err in the error envelope and returns the status used.
// Errors that are not AppErrors, and AppErrors that map to 500, are masked.
func WriteError(w http.ResponseWriter, err error) int {
	status := http.StatusInternalServerError
	resp := ErrorResponse{Success: false, Error: ServerErrorMessage}

	if appErr, ok := utils.AsAppError(err); ok {
		status = utils.AppErrorToHTTPStatus(appErr.Code)
		if status != http.StatusInternalServerError {
			resp.Error = appErr.Message
			resp.Code = appErr.Code
		}
	}
	WriteJSON(w, status, resp)
	return status
}
