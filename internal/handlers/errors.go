package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kitengela/studio/internal/models"
	pkghttp "github.com/kitengela/studio/pkg/http"
)

// userMessage returns the text after the sentinel in errors built as
// fmt.Errorf("%w: message", sentinel), or fallback.
func userMessage(err error, fallback string) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 && i+2 < len(msg) {
		return msg[i+2:]
	}
	return fallback
}

// writeServiceError translates a service error into the JSON error envelope.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrBadRequest):
		pkghttp.WriteBadRequest(w, userMessage(err, "Invalid request"))
	case errors.Is(err, models.ErrConflict):
		pkghttp.WriteConflict(w, userMessage(err, "Resource already exists"))
	case errors.Is(err, models.ErrInvalidCredentials):
		pkghttp.WriteUnauthorized(w, "Invalid email or password.")
	case errors.Is(err, models.ErrUnauthorized), errors.Is(err, models.ErrInvalidToken):
		pkghttp.WriteUnauthorized(w, "Invalid or expired token")
	case errors.Is(err, models.ErrPendingApproval):
		pkghttp.WriteForbidden(w, "Your account is pending admin approval. Please try again later.")
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, "Forbidden")
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, userMessage(err, "Resource not found"))
	default:
		slog.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}

// MessageResponse is the acknowledgement body for state-changing requests
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
