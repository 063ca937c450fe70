//go:build darwin
// +build darwin

package source

import (
	"go.uber.org/zap"

	"nowbridge/internal/domain"
)

// NewPlatformSource returns the session-broker source for macOS, which
// uses the public osascript interface instead of any private framework
func NewPlatformSource(logger *zap.Logger) domain.Source {
	return NewAppleScriptSource(logger)
}
