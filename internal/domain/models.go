package domain

// PlaybackStatus represents the current state of the media session
type PlaybackStatus string

const (
	// StatusPlaying indicates the media is currently playing
	StatusPlaying PlaybackStatus = "Playing"
	// StatusPaused indicates the media is paused
	StatusPaused PlaybackStatus = "Paused"
	// StatusStopped indicates the media is stopped
	StatusStopped PlaybackStatus = "Stopped"
)

// NowPlaying is the typed replacement for the loosely-typed now-playing
// dictionary a session broker hands out. A nil *NowPlaying means
// "metadata unavailable": either nothing is playing or no broker could
// be reached. The two cases are deliberately indistinguishable.
type NowPlaying struct {
	// Title of the currently playing track
	Title string `json:"title"`
	// Artist name
	Artist string `json:"artist,omitempty"`
	// Album name
	Album string `json:"album,omitempty"`
	// ArtURL is the URL or local path to the album artwork
	ArtURL string `json:"art_url,omitempty"`
	// ElapsedSeconds is the playback position, if the broker reports one
	ElapsedSeconds float64 `json:"elapsed_seconds,omitempty"`
	// DurationSeconds is the total track length, if known
	DurationSeconds float64 `json:"duration_seconds,omitempty"`
	// Status is the current playback status
	Status PlaybackStatus `json:"status"`
}

// IsPlaying reports whether the session is actively playing
func (n *NowPlaying) IsPlaying() bool {
	return n != nil && n.Status == StatusPlaying
}

// TrackID returns a stable identity for the track, used by consumers to
// detect track changes without comparing every field
func (n *NowPlaying) TrackID() string {
	if n == nil {
		return ""
	}
	return n.Artist + "\x00" + n.Album + "\x00" + n.Title
}
