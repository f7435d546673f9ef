// Filmatlas - Film Photography Catalogue Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/filmatlas

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestInitDefaults(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Output: &buf})

	Info().Str("key", "value").Msg("hello")

	out := buf.String()
	if !strings.Contains(out, `"key":"value"`) {
		t.Errorf("expected structured field in output, got %q", out)
	}
	if !strings.Contains(out, `"message":"hello"`) {
		t.Errorf("expected message in output, got %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "warn", Output: &buf})
	defer Init(Config{Output: &buf})

	Info().Msg("should not appear")
	Warn().Msg("should appear")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Error("info message leaked through warn-level filter")
	}
	if !strings.Contains(out, "should appear") {
		t.Error("warn message missing from output")
	}
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))

	slogger := slog.New(&SlogHandler{logger: Logger()})
	slogger.Info("supervisor event", slog.String("service", "bridge-hub"))

	out := buf.String()
	if !strings.Contains(out, `"service":"bridge-hub"`) {
		t.Errorf("expected slog attr translated to zerolog field, got %q", out)
	}
	if !strings.Contains(out, "supervisor event") {
		t.Errorf("expected message, got %q", out)
	}
}

func TestSlogAdapterGroups(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewTestLogger(&buf))

	h := (&SlogHandler{logger: Logger()}).WithGroup("suture")
	slogger := slog.New(h)
	slogger.Warn("service failed", slog.String("name", "refresh"))

	out := buf.String()
	if !strings.Contains(out, `"suture.name":"refresh"`) {
		t.Errorf("expected group-prefixed key, got %q", out)
	}
}
