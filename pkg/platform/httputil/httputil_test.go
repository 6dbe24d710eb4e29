package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"

	dErrors "fantasy/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	t.Run("internal error omits description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInternal, "db failed"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "internal_error" {
			t.Fatalf("expected error code internal_error, got %q", body["error"])
		}
		if _, ok := body["error_description"]; ok {
			t.Fatalf("expected error_description to be omitted for internal errors")
		}
	})

	t.Run("uncoded error is treated as internal", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, errors.New("pq: connection refused"))

		if w.Code != http.StatusInternalServerError {
			t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, w.Code)
		}
		if strings.Contains(w.Body.String(), "connection refused") {
			t.Fatalf("expected raw error to stay out of the response")
		}
	})

	t.Run("business rejection includes description", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, dErrors.New(dErrors.CodeInsufficientFunds, "insufficient funds: need 950000, have 10"))

		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected status %d, got %d", http.StatusUnprocessableEntity, w.Code)
		}

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if body["error"] != "insufficient_funds" {
			t.Fatalf("expected error code insufficient_funds, got %q", body["error"])
		}
		if body["error_description"] != "insufficient funds: need 950000, have 10" {
			t.Fatalf("unexpected description %q", body["error_description"])
		}
	})
}

func TestDecodeJSON(t *testing.T) {
	t.Run("rejects unknown fields", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"playerId":"x","extra":1}`))
		var dst struct {
			PlayerID string `json:"playerId"`
		}
		err := DecodeJSON(req, &dst)
		if !dErrors.HasCode(err, dErrors.CodeBadRequest) {
			t.Fatalf("expected bad_request, got %v", err)
		}
	})
}

func TestDecodeAndValidate(t *testing.T) {
	type body struct {
		PlayerID string `json:"playerId" validate:"required,uuid"`
	}
	v := validator.New()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"playerId":"not-a-uuid"}`))
	err := DecodeAndValidate(req, &body{}, v)
	if !dErrors.HasCode(err, dErrors.CodeValidation) {
		t.Fatalf("expected validation_error, got %v", err)
	}
	if !strings.Contains(dErrors.Message(err), "PlayerID") {
		t.Fatalf("expected field name in message, got %q", dErrors.Message(err))
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"playerId":"6ba7b810-9dad-11d1-80b4-00c04fd430c8"}`))
	if err := DecodeAndValidate(req, &body{}, v); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
