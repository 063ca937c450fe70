package source

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"

	"nowbridge/internal/domain"
)

const (
	mprisPrefix     = "org.mpris.MediaPlayer2."
	mprisObjectPath = "/org/mpris/MediaPlayer2"
	propMetadata    = "org.mpris.MediaPlayer2.Player.Metadata"
	propStatus      = "org.mpris.MediaPlayer2.Player.PlaybackStatus"
	propPosition    = "org.mpris.MediaPlayer2.Player.Position"
)

// MPRISSource queries media players over the D-Bus MPRIS interface.
// Unlike a signal-driven monitor it is purely pull-based: every Fetch
// is an independent snapshot of whatever players are on the bus.
type MPRISSource struct {
	logger *zap.Logger

	mu     sync.Mutex
	conn   DBusClient // Interface for testability
	probed bool
}

// NewMPRISSource creates a new MPRIS source. The session bus is not
// touched until Available is called.
func NewMPRISSource(logger *zap.Logger) *MPRISSource {
	return &MPRISSource{logger: logger}
}

// Name returns the source identifier
func (s *MPRISSource) Name() string {
	return "mpris"
}

// Available probes the session bus once. A missing bus (no graphical
// session, non-Linux host) marks the source permanently unavailable.
func (s *MPRISSource) Available() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.probed {
		return s.conn != nil
	}
	s.probed = true

	conn, err := NewStdDBusClient()
	if err != nil {
		s.logger.Warn("Session bus connection failed", zap.Error(err))
		return false
	}
	s.conn = conn
	return true
}

// Close releases the D-Bus connection
func (s *MPRISSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// Fetch lists MPRIS players on the bus and returns metadata from the
// best one: a Playing player wins over a Paused one, a Paused one over
// nothing. Returns (nil, nil) when no player has an active track.
func (s *MPRISSource) Fetch(ctx context.Context) (*domain.NowPlaying, error) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return nil, fmt.Errorf("session bus not connected")
	}

	names, err := conn.ListNames()
	if err != nil {
		return nil, fmt.Errorf("failed to list bus names: %w", err)
	}

	var paused *domain.NowPlaying
	for _, name := range names {
		if !strings.HasPrefix(name, mprisPrefix) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := s.fetchPlayer(conn, name)
		if err != nil {
			s.logger.Debug("Failed to query MPRIS player",
				zap.String("player", name),
				zap.Error(err))
			continue
		}
		if info == nil {
			continue
		}
		if info.Status == domain.StatusPlaying {
			return info, nil
		}
		if paused == nil && info.Status == domain.StatusPaused {
			paused = info
		}
	}

	return paused, nil
}

// fetchPlayer retrieves metadata from a single player. Returns
// (nil, nil) for a player that is stopped or has no current track.
func (s *MPRISSource) fetchPlayer(conn DBusClient, playerName string) (*domain.NowPlaying, error) {
	statusVariant, err := conn.GetProperty(playerName, mprisObjectPath, propStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to get playback status: %w", err)
	}
	status, ok := statusVariant.Value().(string)
	if !ok {
		return nil, fmt.Errorf("invalid playback status format")
	}
	if status == "Stopped" {
		return nil, nil
	}

	variant, err := conn.GetProperty(playerName, mprisObjectPath, propMetadata)
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata: %w", err)
	}

	// SAFE CAST: Some players may return nil or unexpected types if not playing anything
	metadata, ok := variant.Value().(map[string]dbus.Variant)
	if !ok {
		s.logger.Debug("Metadata variant is not a map, skipping", zap.String("player", playerName))
		return nil, nil
	}

	info := s.parseMetadata(metadata, status)
	if info.Title == "" {
		// Player registered on the bus but with no current track
		return nil, nil
	}

	// Position is a separate property and optional in practice
	if posVariant, err := conn.GetProperty(playerName, mprisObjectPath, propPosition); err == nil {
		if micros, ok := asInt64(posVariant.Value()); ok {
			info.ElapsedSeconds = float64(micros) / 1e6
		}
	}

	return info, nil
}

// parseMetadata converts MPRIS metadata to the domain model
func (s *MPRISSource) parseMetadata(metadata map[string]dbus.Variant, status string) *domain.NowPlaying {
	info := &domain.NowPlaying{}

	switch status {
	case "Playing":
		info.Status = domain.StatusPlaying
	case "Paused":
		info.Status = domain.StatusPaused
	default:
		info.Status = domain.StatusStopped
	}

	if titleVar, ok := metadata["xesam:title"]; ok {
		if title, ok := titleVar.Value().(string); ok {
			info.Title = title
		}
	}

	// Artist can be an array
	if artistVar, ok := metadata["xesam:artist"]; ok {
		switch artists := artistVar.Value().(type) {
		case []string:
			if len(artists) > 0 {
				info.Artist = artists[0]
			}
		case string:
			info.Artist = artists
		default:
			// Some non-compliant players may use unexpected types
			s.logger.Debug("Unexpected artist type in metadata",
				zap.String("type", fmt.Sprintf("%T", artistVar.Value())))
		}
	}

	if albumVar, ok := metadata["xesam:album"]; ok {
		if album, ok := albumVar.Value().(string); ok {
			info.Album = album
		}
	}

	if artVar, ok := metadata["mpris:artUrl"]; ok {
		if artURL, ok := artVar.Value().(string); ok {
			info.ArtURL = artURL
		}
	}

	// mpris:length is in microseconds
	if lenVar, ok := metadata["mpris:length"]; ok {
		if micros, ok := asInt64(lenVar.Value()); ok {
			info.DurationSeconds = float64(micros) / 1e6
		}
	}

	return info
}

// asInt64 normalizes the integer types MPRIS players use for
// microsecond values
func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case int32:
		return int64(n), true
	case uint32:
		return int64(n), true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
