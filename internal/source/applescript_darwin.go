//go:build darwin
// +build darwin

package source

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"nowbridge/internal/domain"
)

// Players queried in priority order
var scriptablePlayers = []string{"Music", "Spotify"}

// AppleScriptSource queries scriptable macOS players through osascript.
// This replaces the old private-framework bridge with the public
// scripting interface; players that do not expose one are invisible.
type AppleScriptSource struct {
	logger *zap.Logger
}

// NewAppleScriptSource creates a new osascript-backed source
func NewAppleScriptSource(logger *zap.Logger) *AppleScriptSource {
	return &AppleScriptSource{logger: logger}
}

// Name returns the source identifier
func (s *AppleScriptSource) Name() string {
	return "applescript"
}

// Available reports whether osascript exists on this host
func (s *AppleScriptSource) Available() bool {
	if _, err := exec.LookPath("osascript"); err != nil {
		s.logger.Warn("osascript not found in PATH", zap.Error(err))
		return false
	}
	return true
}

// Fetch asks each known player for its state and returns the first
// answer. Returns (nil, nil) when no player reports a current track.
func (s *AppleScriptSource) Fetch(ctx context.Context) (*domain.NowPlaying, error) {
	for _, player := range scriptablePlayers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := s.fetchPlayer(ctx, player)
		if err != nil {
			s.logger.Debug("Player query failed",
				zap.String("player", player),
				zap.Error(err))
			continue
		}
		if info != nil {
			return info, nil
		}
	}
	return nil, nil
}

func (s *AppleScriptSource) fetchPlayer(ctx context.Context, player string) (*domain.NowPlaying, error) {
	// One round trip per player; tab-separated to survive titles with
	// pipes or commas
	script := fmt.Sprintf(`tell application "System Events"
	if not (exists process "%s") then return ""
end tell
tell application "%s"
	if player state is stopped then return ""
	set sep to (ASCII character 9)
	return (name of current track) & sep & (artist of current track) & sep & (album of current track) & sep & (player state as string) & sep & (player position as string) & sep & (duration of current track as string)
end tell`, player, player)

	cmd := exec.CommandContext(ctx, "osascript", "-e", script)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("osascript failed: %w", err)
	}

	output := strings.TrimSpace(out.String())
	if output == "" {
		return nil, nil
	}

	parts := strings.Split(output, "\t")
	if len(parts) != 6 {
		return nil, fmt.Errorf("unexpected osascript output: got %d fields, expected 6", len(parts))
	}

	info := &domain.NowPlaying{
		Title:  strings.TrimSpace(parts[0]),
		Artist: strings.TrimSpace(parts[1]),
		Album:  strings.TrimSpace(parts[2]),
	}

	switch strings.ToLower(strings.TrimSpace(parts[3])) {
	case "playing":
		info.Status = domain.StatusPlaying
	case "paused":
		info.Status = domain.StatusPaused
	default:
		info.Status = domain.StatusStopped
	}

	if pos, err := strconv.ParseFloat(strings.TrimSpace(parts[4]), 64); err == nil {
		info.ElapsedSeconds = pos
	}
	if dur, err := strconv.ParseFloat(strings.TrimSpace(parts[5]), 64); err == nil {
		// Spotify reports duration in milliseconds, Music in seconds
		if player == "Spotify" {
			dur = dur / 1000
		}
		info.DurationSeconds = dur
	}

	if info.Title == "" {
		return nil, nil
	}
	return info, nil
}
