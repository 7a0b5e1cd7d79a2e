package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// Meta carries pagination information alongside list responses.
type Meta struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Response is the uniform envelope every endpoint answers with. Exactly one
// of Data and Error is set.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// RespondWithError sends a failure envelope.
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, Response{Success: false, Error: message})
}

// RespondWithData sends a success envelope.
func RespondWithData(w http.ResponseWriter, statusCode int, data interface{}) {
	RespondWithJSON(w, statusCode, Response{Success: true, Data: data})
}

// RespondWithMeta sends a success envelope with pagination metadata.
func RespondWithMeta(w http.ResponseWriter, statusCode int, data interface{}, meta Meta) {
	RespondWithJSON(w, statusCode, Response{Success: true, Data: data, Meta: &meta})
}

// RespondWithJSON sends a JSON response.
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// RespondWithValidationErrors reports the first field violation as the
// envelope error.
func RespondWithValidationErrors(w http.ResponseWriter, errors []ValidationError) {
	message := "validation failed"
	if len(errors) > 0 {
		message = errors[0].Field + ": " + errors[0].Message
	}
	RespondWithError(w, http.StatusBadRequest, message)
}

// ErrorHandlingMiddleware catches panics and converts them to 500 envelopes.
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("Panic recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithError(w, http.StatusInternalServerError, "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
