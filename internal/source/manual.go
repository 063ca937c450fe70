package source

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"nowbridge/internal/domain"
)

// ManualSource holds an operator-entered now-playing record. It is the
// store-compliant replacement for any private broker bridge: always
// available, answers with whatever was last Set, and falls through
// (nil, nil) when empty so lower-priority sources get a chance.
type ManualSource struct {
	logger *zap.Logger

	mu      sync.RWMutex
	current *domain.NowPlaying
}

// NewManualSource creates an empty manual source
func NewManualSource(logger *zap.Logger) *ManualSource {
	return &ManualSource{logger: logger}
}

// Name returns the source identifier
func (s *ManualSource) Name() string {
	return "manual"
}

// Available always reports true; manual entry needs no capability
func (s *ManualSource) Available() bool {
	return true
}

// Fetch returns a copy of the current entry, or (nil, nil) when unset
func (s *ManualSource) Fetch(ctx context.Context) (*domain.NowPlaying, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, nil
	}
	info := *s.current
	return &info, nil
}

// Set replaces the current entry. A missing status defaults to Playing
// since an operator entering a track means one is on.
func (s *ManualSource) Set(info domain.NowPlaying) {
	if info.Status == "" {
		info.Status = domain.StatusPlaying
	}

	s.mu.Lock()
	s.current = &info
	s.mu.Unlock()

	s.logger.Info("Manual now-playing entry set",
		zap.String("title", info.Title),
		zap.String("artist", info.Artist))
}

// Clear removes the current entry
func (s *ManualSource) Clear() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	s.logger.Info("Manual now-playing entry cleared")
}
