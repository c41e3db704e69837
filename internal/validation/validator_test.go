// PaperLens - Research Paper Personalization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/paperlens

package validation

import (
	"strings"
	"testing"
)

type similarRequest struct {
	UserID string `json:"user_id" validate:"required,userid"`
	Limit  int    `json:"limit" validate:"gte=1,lte=100"`
}

type prefsRequest struct {
	Level   string `json:"reading_level" validate:"omitempty,reading_level"`
	Cadence string `json:"update_cadence" validate:"omitempty,cadence"`
}

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	if GetValidator() != GetValidator() {
		t.Error("expected the same validator instance")
	}
}

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     interface{}
		wantField string
	}{
		{"valid", &similarRequest{UserID: "user-42@lab", Limit: 10}, ""},
		{"missing user", &similarRequest{Limit: 10}, "user_id"},
		{"bad user chars", &similarRequest{UserID: "bad user", Limit: 10}, "user_id"},
		{"limit too high", &similarRequest{UserID: "u1", Limit: 1000}, "limit"},
		{"valid prefs", &prefsRequest{Level: "expert", Cadence: "bi-weekly"}, ""},
		{"empty prefs", &prefsRequest{}, ""},
		{"bad level", &prefsRequest{Level: "guru"}, "reading_level"},
		{"bad cadence", &prefsRequest{Cadence: "hourly"}, "update_cadence"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(tt.input)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error on %s", tt.wantField)
			}
			if got := err.Errors()[0].Field(); got != tt.wantField {
				t.Errorf("field = %q, want %q", got, tt.wantField)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	t.Parallel()

	single := ValidateStruct(&similarRequest{UserID: "u1", Limit: 0})
	apiErr := single.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q", apiErr.Code)
	}
	if apiErr.Details["field"] != "limit" {
		t.Errorf("details = %v", apiErr.Details)
	}
	if !strings.Contains(apiErr.Message, "greater than or equal to 1") {
		t.Errorf("message = %q", apiErr.Message)
	}

	multi := ValidateStruct(&similarRequest{Limit: 0}).ToAPIError()
	fields, ok := multi.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 2 {
		t.Fatalf("expected two field errors, got %v", multi.Details)
	}
}

func TestValidateVar(t *testing.T) {
	t.Parallel()

	if err := ValidateVar("userID", "alice", "required,userid"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := ValidateVar("userID", strings.Repeat("x", 200), "required,userid")
	if err == nil {
		t.Fatal("expected error for overlong user id")
	}
	if err.Errors()[0].Field() != "userID" {
		t.Errorf("field = %q", err.Errors()[0].Field())
	}
}
