package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "fieldnorm/pkg/errors"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", apperrors.NotFound("Record"), http.StatusNotFound, apperrors.CodeNotFound},
		{"validation", apperrors.Validation("bad", nil), http.StatusUnprocessableEntity, apperrors.CodeValidation},
		{"rate limited", apperrors.TooManyRequests("slow"), http.StatusTooManyRequests, apperrors.CodeRateLimited},
		{"plain error", errors.New("secret driver detail"), http.StatusInternalServerError, apperrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body apperrors.ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if body.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", body.Code, tt.wantCode)
			}
			if strings.Contains(rec.Body.String(), "secret driver detail") {
				t.Errorf("internal error text leaked: %s", rec.Body.String())
			}
		})
	}
}

func TestWriteCreated(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteCreated(rec, map[string]string{"id": "x"})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"data":{"id":"x"}}` {
		t.Errorf("body = %s", got)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %s", ct)
	}
}

func TestExtractLimitOffset(t *testing.T) {
	tests := []struct {
		query      string
		wantLimit  int
		wantOffset int64
		wantErr    bool
	}{
		{"", DefaultPaginationLimit, 0, false},
		{"limit=5&offset=10", 5, 10, false},
		{"limit=1000", MaxPaginationLimit, 0, false},
		{"limit=-3&offset=-1", DefaultPaginationLimit, 0, false},
		{"limit=abc", 0, 0, true},
		{"offset=1.5", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/v1/records?"+tt.query, nil)
			limit, offset, err := ExtractLimitOffset(r)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Errorf("got (%d, %d), want (%d, %d)", limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Text *string `json:"text"`
	}

	t.Run("valid", func(t *testing.T) {
		var p payload
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"a"}`))
		if err := DecodeJSON(r, &p, false); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.Text == nil || *p.Text != "a" {
			t.Errorf("unexpected payload: %+v", p)
		}
	})

	t.Run("empty allowed", func(t *testing.T) {
		var p payload
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		if err := DecodeJSON(r, &p, true); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("empty rejected", func(t *testing.T) {
		var p payload
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		assertStatus(t, DecodeJSON(r, &p, false), http.StatusBadRequest)
	})

	t.Run("unknown field", func(t *testing.T) {
		var p payload
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"txt":"a"}`))
		assertStatus(t, DecodeJSON(r, &p, false), http.StatusBadRequest)
	})

	t.Run("trailing data", func(t *testing.T) {
		var p payload
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"a"}{}`))
		assertStatus(t, DecodeJSON(r, &p, false), http.StatusBadRequest)
	})

	t.Run("too large", func(t *testing.T) {
		var p payload
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"text":"`+strings.Repeat("a", 100)+`"}`))
		r.Body = http.MaxBytesReader(rec, r.Body, 16)
		assertStatus(t, DecodeJSON(r, &p, false), http.StatusRequestEntityTooLarge)
	})
}

func assertStatus(t *testing.T, err error, want int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with status %d", want)
	}
	if got := apperrors.AsAppError(err).StatusCode(); got != want {
		t.Errorf("status = %d, want %d (%v)", got, want, err)
	}
}
