package httpx

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dmehra2102/foodhub/pkg/apperr"
)

type envelope struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func WriteJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(envelope{Status: "success", Data: data})
}

func WriteMessage(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(envelope{Status: "error", Message: msg})
}

// WriteError reports err with the status apperr assigns to it. Internal
// errors are logged and their text is not exposed.
func WriteError(w http.ResponseWriter, log *slog.Logger, err error) {
	code := apperr.HTTPStatus(err)
	if code == http.StatusInternalServerError {
		log.Error("request failed", "err", err)
		WriteMessage(w, code, "internal server error")
		return
	}
	WriteMessage(w, code, err.Error())
}

// Decode reads a JSON body into dst, rejecting malformed input as a
// validation error.
func Decode(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("%w: request body required", apperr.ErrValidation)
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid body", apperr.ErrValidation)
	}
	return nil
}
