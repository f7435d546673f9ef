// Filmatlas - Film Photography Catalogue Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmatlas

package models

import (
	"testing"

	"github.com/goccy/go-json"
)

func TestFlexFloatUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  float64
		valid bool
	}{
		{"number", `48.858`, 48.858, true},
		{"negative number", `-122.4194`, -122.4194, true},
		{"string number", `"48.858"`, 48.858, true},
		{"string with spaces", `" 2.35 "`, 2.35, true},
		{"integer", `7`, 7, true},
		{"not a number", `"not-a-number"`, 0, false},
		{"empty string", `""`, 0, false},
		{"null", `null`, 0, false},
		{"bool", `true`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexFloat
			if err := json.Unmarshal([]byte(tt.input), &f); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.Valid != tt.valid {
				t.Fatalf("Valid = %v, want %v", f.Valid, tt.valid)
			}
			if tt.valid && f.Value != tt.want {
				t.Errorf("Value = %v, want %v", f.Value, tt.want)
			}
		})
	}
}

func TestFlexFloatFinite(t *testing.T) {
	var f FlexFloat
	if err := json.Unmarshal([]byte(`"Infinity"`), &f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Finite() {
		t.Error("Infinity should not be finite")
	}

	if err := json.Unmarshal([]byte(`1.5`), &f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.Finite() {
		t.Error("1.5 should be finite")
	}
}

func TestFlexIDUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"string", `"abc-123"`, "abc-123"},
		{"number", `42`, "42"},
		{"null", `null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id FlexID
			if err := json.Unmarshal([]byte(tt.input), &id); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if id.String() != tt.want {
				t.Errorf("got %q, want %q", id.String(), tt.want)
			}
		})
	}
}
