package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/christianmesinas/famplan/internal/service"
)

func TestRespondServiceError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"user not found", service.ErrUserNotFound, 404},
		{"family not found", service.ErrFamilyNotFound, 404},
		{"invite not found", service.ErrInviteNotFound, 404},
		{"post not found", service.ErrPostNotFound, 404},
		{"not a member", service.ErrNotFamilyMember, 403},
		{"not the author", service.ErrNotPostAuthor, 403},
		{"calendar not connected", service.ErrCalendarNotConnected, 403},
		{"email conflict", service.ErrEmailConflict, 409},
		{"already a member", service.ErrAlreadyMember, 409},
		{"username taken", service.ErrUsernameTaken, 409},
		{"invalid username", service.ErrInvalidUsername, 400},
		{"invite expired", service.ErrInviteExpired, 410},
		{"invite already used", service.ErrInviteAlreadyUsed, 410},
		{"invalid post", service.ErrInvalidPost, 400},
		{"invalid message", service.ErrInvalidMessage, 400},
		{"self follow", service.ErrSelfFollow, 400},
		{"calendar unavailable", service.ErrCalendarUnavailable, 502},
		{"unknown error", errors.New("boom"), 500},
		{"wrapped sentinel", fmt.Errorf("context: %w", service.ErrInviteExpired), 410},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondServiceError(rec, tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}

			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("body is not JSON: %v", err)
			}
			if body["error"] == "" {
				t.Error("error body should carry a message")
			}
		})
	}
}

func TestUnknownErrorBodyIsOpaque(t *testing.T) {
	rec := httptest.NewRecorder()
	respondServiceError(rec, errors.New("secret database detail"))

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body["error"] != "internal server error" {
		t.Errorf("error = %q, internal detail must not leak", body["error"])
	}
}
