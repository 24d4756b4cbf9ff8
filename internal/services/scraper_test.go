package services

import (
	"testing"
	"time"

	"github.com/desertthunder/spx/internal/shared"
)

func TestNewScraperService(t *testing.T) {
	t.Run("Uses Configured Timeout", func(t *testing.T) {
		srv := NewScraperService(shared.ScraperConfig{TimeoutSeconds: 30}, nil)

		if srv.timeout != 30*time.Second {
			t.Errorf("expected 30s timeout, got %v", srv.timeout)
		}
		if srv.Name() != "Web Scraper" {
			t.Errorf("expected name 'Web Scraper', got %q", srv.Name())
		}
	})

	t.Run("Zero Timeout Falls Back To Default", func(t *testing.T) {
		srv := NewScraperService(shared.ScraperConfig{}, nil)

		if srv.timeout != 90*time.Second {
			t.Errorf("expected default 90s timeout, got %v", srv.timeout)
		}
	})
}

func TestSplitArtists(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected []string
	}{
		{"Single", "Queen", []string{"Queen"}},
		{"Multiple", "Daft Punk, Pharrell Williams", []string{"Daft Punk", "Pharrell Williams"}},
		{"Empty", "", nil},
		{"Trailing Separator", "Queen, ", []string{"Queen"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := splitArtists(tc.input)
			if len(got) != len(tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
			for i := range got {
				if got[i] != tc.expected[i] {
					t.Errorf("expected %v, got %v", tc.expected, got)
				}
			}
		})
	}
}

func TestParseFollowers(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected int
	}{
		{"With Separator", "1,234 saves", 1234},
		{"Plain", "87 saves", 87},
		{"Large Count", "2,406,195 saves", 2406195},
		{"No Digits", "saves", 0},
		{"Empty", "", 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := parseFollowers(tc.input); got != tc.expected {
				t.Errorf("parseFollowers(%q) = %d, expected %d", tc.input, got, tc.expected)
			}
		})
	}
}
