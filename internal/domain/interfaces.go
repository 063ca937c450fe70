package domain

import "context"

// Source defines the interface for a now-playing metadata source.
// Implementations wrap one way of reaching the session broker (MPRIS
// over D-Bus, an osascript bridge, manual operator entry).
type Source interface {
	// Name returns a short identifier for logging ("mpris", "manual", ...)
	Name() string

	// Available reports whether the source's capability could be
	// resolved. It is probed once at startup; a source that returns
	// false is never queried.
	Available() bool

	// Fetch returns the current now-playing metadata, or (nil, nil)
	// when nothing is playing. Errors are for broker-level failures
	// and are collapsed to an absent value by the bridge.
	Fetch(ctx context.Context) (*NowPlaying, error)
}

// Fetcher defines the interface for retrieving album artwork
type Fetcher interface {
	// Fetch downloads or reads image data from a URL or local path
	// Returns the raw image bytes or an error
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Thumbnailer defines the interface for in-memory artwork processing
type Thumbnailer interface {
	// Thumbnail downscales raw image data to a square JPEG thumbnail
	Thumbnail(ctx context.Context, imageData []byte) ([]byte, error)
}

// Resolver defines the interface for turning a public share link
// (Spotify, Apple Music, YouTube) into now-playing metadata
type Resolver interface {
	// Resolve fetches the page behind the link and extracts metadata
	Resolve(ctx context.Context, link string) (*NowPlaying, error)
}

// Config defines the interface for application configuration
type Config interface {
	// ListenAddr returns the address the HTTP relay binds to
	ListenAddr() string

	// PollIntervalSeconds returns how often the engine queries the bridge
	PollIntervalSeconds() int

	// ThumbnailSize returns the square thumbnail edge length in pixels
	ThumbnailSize() int

	// ArtworkMaxBytes returns the artwork download size cap
	ArtworkMaxBytes() int64
}
