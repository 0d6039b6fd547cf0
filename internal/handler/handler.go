package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"premi-cart/internal/model"
	"premi-cart/internal/session"

	"github.com/rs/zerolog"
)

// writeJSON writes a JSON response with the given status code. The status
// line is already sent, so an encode failure cannot change the response.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response with the given status, code and message.
func writeError(w http.ResponseWriter, status int, code, message string, logger zerolog.Logger) {
	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Str("code", code).Str("error", message).Int("status", status).Msg("handler error")
	writeJSON(w, status, model.ErrorResponse{Error: code, Message: message})
}

// writeDomainError maps domain and submission errors onto HTTP responses.
func writeDomainError(w http.ResponseWriter, err error, logger zerolog.Logger) {
	var subErr *model.SubmissionError
	if errors.As(err, &subErr) {
		writeError(w, submissionStatus(subErr), subErr.Code(), subErr.Message, logger)
		return
	}

	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		writeError(w, domainStatus(domainErr), domainErr.Code, domainErr.Message, logger)
		return
	}

	logger.Error().Err(err).Msg("unexpected error")
	writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "internal server error", logger)
}

func domainStatus(err *model.DomainError) int {
	switch err.Code {
	case model.ErrCodeItemNotFound, model.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case model.ErrCodeSubmissionInFlight, model.ErrCodeCheckoutNotOpen:
		return http.StatusConflict
	case model.ErrCodeEmptyCart, model.ErrCodeInvalidChannel, model.ErrCodeInvalidJSON,
		model.ErrCodeMissingField, model.ErrCodeInvalidPrice:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func submissionStatus(err *model.SubmissionError) int {
	switch err.Kind {
	case model.SubmissionUnauthenticated:
		return http.StatusUnauthorized
	case model.SubmissionUnreachable:
		return http.StatusBadGateway
	default:
		return http.StatusUnprocessableEntity
	}
}

// currentSession returns the request's session or writes an error.
func currentSession(w http.ResponseWriter, r *http.Request, logger zerolog.Logger) (*session.Session, bool) {
	s, ok := session.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, model.ErrCodeSessionNotFound, "session not available", logger)
		return nil, false
	}
	return s, true
}
