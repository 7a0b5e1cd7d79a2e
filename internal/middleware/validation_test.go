package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Mirror of the sticker creation payload's validated fields.
type stickerPayload struct {
	ModelNumber string `json:"model_number" validate:"required"`
	NameES      string `json:"name_es" validate:"required"`
	NameEN      string `json:"name_en" validate:"required"`
	ProductType string `json:"product_type" validate:"required,oneof=calco jarro iman"`
	PriceARS    int64  `json:"price_ars" validate:"required,gt=0"`
	Stock       int    `json:"stock" validate:"gte=0"`
}

func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeModel bool, includeNameES bool, includeNameEN bool) bool {
			reqMap := map[string]interface{}{
				"product_type": "calco",
				"price_ars":    1500,
			}

			if includeModel {
				reqMap["model_number"] = "#001"
			}
			if includeNameES {
				reqMap["name_es"] = "Gato"
			}
			if includeNameEN {
				reqMap["name_en"] = "Cat"
			}

			allFieldsPresent := includeModel && includeNameES && includeNameEN

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var payload stickerPayload
			err := DecodeAndValidate(req, &payload)

			if allFieldsPresent {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ValidationErrorsAreFormatted(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("validation errors include field information", prop.ForAll(
		func() bool {
			// Unknown product type fails the oneof rule.
			reqMap := map[string]interface{}{
				"model_number": "#001",
				"name_es":      "Gato",
				"name_en":      "Cat",
				"product_type": "poster",
				"price_ars":    1500,
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var payload stickerPayload
			err := DecodeAndValidate(req, &payload)

			if err == nil {
				return false
			}

			validationErrors := FormatValidationErrors(err)

			if len(validationErrors) == 0 {
				return false
			}

			for _, ve := range validationErrors {
				if ve.Field == "" || ve.Message == "" {
					return false
				}
			}

			return true
		},
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ValidRequestsPassValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("valid requests pass validation", prop.ForAll(
		func(seed int) bool {
			productTypes := []string{"calco", "jarro", "iman"}
			prices := []int64{500, 1500, 3200, 9999}

			if seed < 0 {
				seed = -seed
			}

			reqMap := map[string]interface{}{
				"model_number": "#123",
				"name_es":      "Gato espacial",
				"name_en":      "Space cat",
				"product_type": productTypes[seed%len(productTypes)],
				"price_ars":    prices[seed%len(prices)],
				"stock":        seed % 50,
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var payload stickerPayload
			err := DecodeAndValidate(req, &payload)

			return err == nil
		},
		gen.Int(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_PriceMustBePositive(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("non-positive prices are rejected", prop.ForAll(
		func(price int64) bool {
			reqMap := map[string]interface{}{
				"model_number": "#123",
				"name_es":      "Gato",
				"name_en":      "Cat",
				"product_type": "calco",
				"price_ars":    price,
				"stock":        1,
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var payload stickerPayload
			err := DecodeAndValidate(req, &payload)

			if price > 0 {
				return err == nil
			}
			return err != nil
		},
		gen.Int64Range(-10000, 10000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
