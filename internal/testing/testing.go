// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"

	"github.com/desertthunder/spx/internal/models"
)

// MockExtractor is a test double for [services.Extractor]
type MockExtractor struct {
	ServiceName string
	Playlist    *models.Playlist
	Tracks      []models.RawTrack
	Err         error
	Calls       int
}

func (m *MockExtractor) ExtractPlaylist(ctx context.Context, playlistID string) (*models.Playlist, []models.RawTrack, error) {
	m.Calls++
	if m.Err != nil {
		return nil, nil, m.Err
	}
	return m.Playlist, m.Tracks, nil
}

func (m *MockExtractor) Name() string {
	if m.ServiceName == "" {
		return "mock"
	}
	return m.ServiceName
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// F64 returns a pointer to v, for building raw track fixtures.
func F64(v float64) *float64 { return &v }

// I64 returns a pointer to v.
func I64(v int64) *int64 { return &v }

// I returns a pointer to v.
func I(v int) *int { return &v }

// B returns a pointer to v.
func B(v bool) *bool { return &v }
