package response

import (
	"encoding/json"
	"net/http"

	"github.com/swairua/medplus/pkg/apperr"
)

// errorBody is the contract shape for every failed request.
type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// JSON writes payload as-is with the given status. Payload structs carry
// their own success flag.
func JSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// Error writes {success:false, error:message}.
func Error(w http.ResponseWriter, statusCode int, message string) {
	JSON(w, statusCode, errorBody{Success: false, Error: message})
}

// FromAppError maps a classified error to its HTTP response.
func FromAppError(w http.ResponseWriter, err error) {
	Error(w, apperr.Status(err), apperr.Message(err))
}

func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

func TooManyRequests(w http.ResponseWriter, message string) {
	Error(w, http.StatusTooManyRequests, message)
}

func InternalServerError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, message)
}
