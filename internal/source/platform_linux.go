//go:build linux
// +build linux

package source

import (
	"go.uber.org/zap"

	"nowbridge/internal/domain"
)

// NewPlatformSource returns the session-broker source for Linux, which
// speaks MPRIS over the D-Bus session bus
func NewPlatformSource(logger *zap.Logger) domain.Source {
	return NewMPRISSource(logger)
}
