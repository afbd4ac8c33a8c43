package utils

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/mdobak/go-xerrors"
)

func TestGetEnvFallback(t *testing.T) {
	t.Setenv("SPEECH_COACH_TEST_KEY", "")
	if got := GetEnv("SPEECH_COACH_TEST_KEY", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}

	t.Setenv("SPEECH_COACH_TEST_KEY", "value")
	if got := GetEnv("SPEECH_COACH_TEST_KEY", "fallback"); got != "value" {
		t.Fatalf("expected value, got %q", got)
	}
}

func TestGetEnvFloat(t *testing.T) {
	t.Setenv("SPEECH_COACH_TEST_FLOAT", "0.25")
	if got := GetEnvFloat("SPEECH_COACH_TEST_FLOAT", 1); got != 0.25 {
		t.Fatalf("expected 0.25, got %v", got)
	}

	t.Setenv("SPEECH_COACH_TEST_FLOAT", "not-a-number")
	if got := GetEnvFloat("SPEECH_COACH_TEST_FLOAT", 1); got != 1 {
		t.Fatalf("expected fallback 1, got %v", got)
	}
}

func TestGenerateUniqueIDIsUnique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateUniqueID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestReplaceAttrExpandsErrors(t *testing.T) {
	t.Parallel()

	plain := replaceAttr(nil, slog.Any("error", errors.New("boom")))
	if plain.Value.Kind() != slog.KindGroup {
		t.Fatalf("expected group value for error, got %v", plain.Value.Kind())
	}
	if got := len(plain.Value.Group()); got != 1 {
		t.Fatalf("expected only msg for plain error, got %d attrs", got)
	}

	traced := replaceAttr(nil, slog.Any("error", xerrors.New("boom")))
	if got := len(traced.Value.Group()); got != 2 {
		t.Fatalf("expected msg and trace for xerrors error, got %d attrs", got)
	}

	other := replaceAttr(nil, slog.Int("count", 3))
	if other.Value.Kind() != slog.KindInt64 {
		t.Fatalf("non-error attrs must pass through, got %v", other.Value.Kind())
	}
}
