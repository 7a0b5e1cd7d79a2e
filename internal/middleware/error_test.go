package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProperty_ErrorsHaveConsistentEnvelope(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("all error responses use the failure envelope", prop.ForAll(
		func(message string) bool {
			// Use standard HTTP status codes that have defined text
			standardCodes := []int{
				http.StatusBadRequest,          // 400
				http.StatusUnauthorized,        // 401
				http.StatusNotFound,            // 404
				http.StatusConflict,            // 409
				http.StatusTooManyRequests,     // 429
				http.StatusInternalServerError, // 500
			}

			statusCode := standardCodes[len(message)%len(standardCodes)]

			if len(message) == 0 {
				message = "test error"
			}

			w := httptest.NewRecorder()
			RespondWithError(w, statusCode, message)

			if w.Code != statusCode {
				return false
			}

			if w.Header().Get("Content-Type") != "application/json" {
				return false
			}

			var response Response
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				return false
			}

			// Failure envelope: success false, error set, no data.
			if response.Success {
				return false
			}
			if response.Error != message {
				return false
			}
			if response.Data != nil {
				return false
			}

			return true
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 }),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ErrorStatusCodesAreCorrect(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("error responses use correct HTTP status codes", prop.ForAll(
		func(useCode int) bool {
			standardCodes := []int{
				http.StatusBadRequest,
				http.StatusUnauthorized,
				http.StatusForbidden,
				http.StatusNotFound,
				http.StatusConflict,
				http.StatusTooManyRequests,
				http.StatusInternalServerError,
				http.StatusServiceUnavailable,
			}

			if useCode < 0 {
				useCode = -useCode
			}

			statusCode := standardCodes[useCode%len(standardCodes)]

			w := httptest.NewRecorder()
			RespondWithError(w, statusCode, "test error")

			return w.Code == statusCode
		},
		gen.Int(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_SuccessEnvelopeCarriesData(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("success responses carry data and no error", prop.ForAll(
		func(data map[string]string) bool {
			w := httptest.NewRecorder()
			RespondWithData(w, http.StatusOK, data)

			var response Response
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				return false
			}

			if !response.Success {
				return false
			}
			if response.Error != "" {
				return false
			}

			payload, ok := response.Data.(map[string]interface{})
			if !ok {
				return len(data) == 0
			}
			for k, v := range data {
				if payload[k] != v {
					return false
				}
			}

			return true
		},
		gen.MapOf(gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 }), gen.AlphaString()),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_MetaEnvelopeCarriesPagination(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("list responses carry total, page and limit", prop.ForAll(
		func(total int, page int) bool {
			if total < 0 {
				total = -total
			}
			if page < 1 {
				page = 1
			}

			w := httptest.NewRecorder()
			RespondWithMeta(w, http.StatusOK, []string{}, Meta{Total: total, Page: page, Limit: 24})

			var response Response
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				return false
			}

			if !response.Success || response.Meta == nil {
				return false
			}

			return response.Meta.Total == total &&
				response.Meta.Page == page &&
				response.Meta.Limit == 24
		},
		gen.Int(),
		gen.Int(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ValidationErrorsReportFirstViolation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("validation failures answer 400 naming the first field", prop.ForAll(
		func(fieldName string, errorMessage string) bool {
			if fieldName == "" {
				fieldName = "testField"
			}
			if errorMessage == "" {
				errorMessage = "test error"
			}

			errors := []ValidationError{
				{Field: fieldName, Message: errorMessage},
				{Field: "other", Message: "ignored"},
			}

			w := httptest.NewRecorder()
			RespondWithValidationErrors(w, errors)

			if w.Code != http.StatusBadRequest {
				return false
			}

			var response Response
			if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
				return false
			}

			if response.Success {
				return false
			}

			return strings.Contains(response.Error, fieldName) &&
				strings.Contains(response.Error, errorMessage)
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_JSONResponsesAreValid(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("JSON responses are valid and parseable", prop.ForAll(
		func(useCode int, data map[string]string) bool {
			standardCodes := []int{
				http.StatusOK,
				http.StatusCreated,
				http.StatusAccepted,
				http.StatusBadRequest,
				http.StatusUnauthorized,
				http.StatusForbidden,
				http.StatusNotFound,
				http.StatusInternalServerError,
			}

			if useCode < 0 {
				useCode = -useCode
			}

			statusCode := standardCodes[useCode%len(standardCodes)]

			w := httptest.NewRecorder()
			RespondWithJSON(w, statusCode, data)

			if w.Code != statusCode {
				return false
			}

			if w.Header().Get("Content-Type") != "application/json" {
				return false
			}

			var result map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &result); err != nil {
				return false
			}

			for k, v := range data {
				if result[k] != v {
					return false
				}
			}

			return true
		},
		gen.Int(),
		gen.MapOf(gen.AlphaString(), gen.AlphaString()),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
