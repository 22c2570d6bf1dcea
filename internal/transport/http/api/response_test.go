package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"teaps/internal/domain/fault"
)

func TestFailErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", fault.Invalid("year", "year out of range"), http.StatusBadRequest, "validation_error"},
		{"not found", fault.NotFound("appraisal", "a1"), http.StatusNotFound, "not_found"},
		{"state conflict", fault.StateConflict("appraisal", "a1", "draft", "hr review"), http.StatusConflict, "state_conflict"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "op_failed"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			FailError(rec, tc.err, "op_failed", "operation failed", "req-1")

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}

			var envelope Envelope
			if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if envelope.Success {
				t.Fatal("expected success=false")
			}
			if envelope.Error == nil || envelope.Error.Code != tc.wantCode {
				t.Fatalf("error = %+v, want code %q", envelope.Error, tc.wantCode)
			}
			if envelope.RequestID != "req-1" {
				t.Fatalf("requestId = %q", envelope.RequestID)
			}
		})
	}
}

func TestWrappedFaultStillMaps(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), fault.NotFound("dispute", "d1"))
	rec := httptest.NewRecorder()
	FailError(rec, wrapped, "op_failed", "operation failed", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
