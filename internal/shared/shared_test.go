package shared

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestGenerateSlug(t *testing.T) {
	t.Run("uses alphabet and length", func(t *testing.T) {
		for range 200 {
			slug, err := GenerateSlug()
			if err != nil {
				t.Fatalf("GenerateSlug() error = %v", err)
			}
			if !IsValidSlug(slug) {
				t.Fatalf("GenerateSlug() = %q, not a valid slug", slug)
			}
		}
	})

	t.Run("values differ", func(t *testing.T) {
		seen := make(map[string]struct{})
		for range 100 {
			slug, _ := GenerateSlug()
			seen[slug] = struct{}{}
		}
		if len(seen) < 99 {
			t.Errorf("expected distinct slugs, got %d unique of 100", len(seen))
		}
	})
}

func TestIsValidSlug(t *testing.T) {
	tc := []struct {
		name string
		slug string
		want bool
	}{
		{name: "lowercase and digits", slug: "abc12345", want: true},
		{name: "too short", slug: "abc1234", want: false},
		{name: "too long", slug: "abc123456", want: false},
		{name: "uppercase", slug: "ABC12345", want: false},
		{name: "punctuation", slug: "abc-1234", want: false},
		{name: "empty", slug: "", want: false},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidSlug(tt.slug); got != tt.want {
				t.Errorf("IsValidSlug(%q) = %v, want %v", tt.slug, got, tt.want)
			}
		})
	}
}

func TestGenerateState(t *testing.T) {
	a, err := GenerateState()
	if err != nil {
		t.Fatalf("GenerateState() error = %v", err)
	}
	b, _ := GenerateState()
	if a == b {
		t.Error("expected two states to differ")
	}
	if strings.ContainsAny(a, "+/=") {
		t.Errorf("state %q is not URL safe", a)
	}
}

func TestSetLogLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := NewLogger(buf)

	t.Run("valid level", func(t *testing.T) {
		if err := SetLogLevel(logger, "debug"); err != nil {
			t.Fatalf("SetLogLevel() error = %v", err)
		}
		if logger.GetLevel() != log.DebugLevel {
			t.Errorf("expected debug level, got %v", logger.GetLevel())
		}
	})

	t.Run("invalid level", func(t *testing.T) {
		if err := SetLogLevel(logger, "loud"); err == nil {
			t.Error("expected error for unknown level")
		}
	})

	t.Run("empty level is a no-op", func(t *testing.T) {
		if err := SetLogLevel(logger, ""); err != nil {
			t.Errorf("expected nil error, got %v", err)
		}
	})
}
