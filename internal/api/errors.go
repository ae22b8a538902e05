package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// ErrorBuilder constructs structured errors with context.
type ErrorBuilder struct {
	errType   string
	message   string
	context   map[string]interface{}
	requestID string
}

// NewError starts an error builder.
func NewError(errType, message string) *ErrorBuilder {
	return &ErrorBuilder{
		errType: errType,
		message: message,
		context: make(map[string]interface{}),
	}
}

// WithContext attaches a context value.
func (eb *ErrorBuilder) WithContext(key string, value interface{}) *ErrorBuilder {
	eb.context[key] = value
	return eb
}

// WithRequestID attaches the request id.
func (eb *ErrorBuilder) WithRequestID(requestID string) *ErrorBuilder {
	eb.requestID = requestID
	return eb
}

// Build finalizes the APIError.
func (eb *ErrorBuilder) Build() APIError {
	return APIError{
		Type:      eb.errType,
		Message:   eb.message,
		Context:   eb.context,
		RequestID: eb.requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ErrorHandler centralizes error responses and their logging.
type ErrorHandler struct {
	logger zerolog.Logger
}

// NewErrorHandler creates an error handler.
func NewErrorHandler(logger zerolog.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle writes an APIError response, logging with severity by status.
func (eh *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, status int, apiErr APIError) {
	if apiErr.RequestID == "" {
		apiErr.RequestID = middleware.GetReqID(r.Context())
	}

	evt := eh.logger.Warn()
	if status >= 500 {
		evt = eh.logger.Error()
	}
	evt.Str("type", apiErr.Type).
		Int("status", status).
		Str("request_id", apiErr.RequestID).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg(apiErr.Message)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.Header().Set("X-Error-Type", apiErr.Type)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(apiErr); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// Validation writes a 400 for a failed input check.
func (eh *ErrorHandler) Validation(w http.ResponseWriter, r *http.Request, field, message string) {
	apiErr := NewError(ErrTypeValidation, fmt.Sprintf("Validation failed: %s", message)).
		WithContext("field", field).
		WithRequestID(middleware.GetReqID(r.Context())).
		Build()
	eh.Handle(w, r, http.StatusBadRequest, apiErr)
}

// Internal writes a 500 wrapping an unexpected error.
func (eh *ErrorHandler) Internal(w http.ResponseWriter, r *http.Request, err error) {
	apiErr := NewError(ErrTypeInternal, "Internal server error").
		WithContext("cause", err.Error()).
		WithRequestID(middleware.GetReqID(r.Context())).
		Build()
	eh.Handle(w, r, http.StatusInternalServerError, apiErr)
}

// Recovery converts panics into structured 500s.
func (eh *ErrorHandler) Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				requestID := middleware.GetReqID(r.Context())
				eh.logger.Error().
					Str("request_id", requestID).
					Str("path", r.URL.Path).
					Interface("panic", rvr).
					Msg("panic recovered")

				apiErr := NewError(ErrTypeInternal, "Internal server error").
					WithRequestID(requestID).
					Build()
				eh.Handle(w, r, http.StatusInternalServerError, apiErr)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
