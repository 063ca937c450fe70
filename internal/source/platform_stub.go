//go:build !linux && !darwin
// +build !linux,!darwin

package source

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"nowbridge/internal/domain"
)

// stubSource is the platform source for hosts with no supported
// session broker; it never becomes available
type stubSource struct {
	logger *zap.Logger
}

// NewPlatformSource returns a stub source for unsupported platforms
func NewPlatformSource(logger *zap.Logger) domain.Source {
	logger.Warn("No session broker integration for this platform, only manual entry will work")
	return &stubSource{logger: logger}
}

func (s *stubSource) Name() string {
	return "stub"
}

func (s *stubSource) Available() bool {
	return false
}

func (s *stubSource) Fetch(ctx context.Context) (*domain.NowPlaying, error) {
	return nil, fmt.Errorf("no session broker on this platform")
}
