package shared

import (
	"bytes"
	"strings"
	"testing"
)

func TestSlugifyName(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"Spaces", "My Awesome Playlist", "My_Awesome_Playlist"},
		{"Runs Of Whitespace", "Late  Night\tDrive", "Late_Night_Drive"},
		{"Single Word", "Focus", "Focus"},
		{"Empty", "", ""},
		{"Only Whitespace", "   ", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SlugifyName(tc.input); got != tc.expected {
				t.Errorf("SlugifyName(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestGenerateID(t *testing.T) {
	first := GenerateID()
	second := GenerateID()

	if first == second {
		t.Error("expected unique IDs")
	}
	if len(first) != 36 {
		t.Errorf("expected UUID string, got %q", first)
	}
}

func TestMarshalJSON(t *testing.T) {
	data := map[string]int{"count": 2}

	t.Run("Compact", func(t *testing.T) {
		out, err := MarshalJSON(data, false)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if string(out) != `{"count":2}` {
			t.Errorf("unexpected output %s", out)
		}
	})

	t.Run("Pretty", func(t *testing.T) {
		out, err := MarshalJSON(data, true)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(string(out), "\n  \"count\": 2") {
			t.Errorf("expected indented output, got %s", out)
		}
	})

	t.Run("Unmarshalable Value", func(t *testing.T) {
		if _, err := MarshalJSON(make(chan int), false); err == nil {
			t.Error("expected error for unmarshalable value")
		}
	})
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)

	logger.Info("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("expected log output, got %q", buf.String())
	}
}
