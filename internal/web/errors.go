package web

// errors.go provides unified error responses for the web layer.
//
// Every error is logged once with the request ID and returned as an
// ErrorResponse carrying the user message from core.MapError. The status
// code follows from the error itself:
//
//	ValidationErrors        422
//	errInvalidBody          400
//	errBodyTooLarge         413
//	core.ErrConflict        409
//	core.ErrTooManyAppends  503
//	anything else           500, with the technical message in Detail

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/personcsv/internal/core"
	"github.com/JonMunkholm/personcsv/internal/logging"
)

var (
	errInvalidBody  = errors.New("invalid request body")
	errBodyTooLarge = errors.New("request body too large")
	errRateLimited  = errors.New("rate limit exceeded")
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error      string                 `json:"error"`
	Message    string                 `json:"message"`
	Action     string                 `json:"action,omitempty"`
	Code       string                 `json:"code"`
	Detail     string                 `json:"detail,omitempty"`
	Violations []core.ValidationError `json:"violations,omitempty"`
}

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	var verrs core.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBodyTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errInvalidBody):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, core.ErrTooManyAppends):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes it as an ErrorResponse.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	resp := &ErrorResponse{}
	var verrs core.ValidationErrors
	if errors.As(err, &verrs) {
		resp.Violations = verrs
	}
	if status >= http.StatusInternalServerError {
		resp.Detail = err.Error()
	}
	respondErrorJSON(w, userMsg, status, resp)
}

// respondErrorJSON writes msg as JSON. extra, when non-nil, supplies the
// Detail and Violations fields.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, status int, extra *ErrorResponse) {
	resp := ErrorResponse{}
	if extra != nil {
		resp = *extra
	}
	resp.Error = msg.Message
	resp.Message = msg.Message
	resp.Action = msg.Action
	resp.Code = msg.Code

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
