package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"nowbridge/internal/domain"
)

// Querier is the slice of the bridge the engine needs
type Querier interface {
	GetNowPlayingInfo(completion func(*domain.NowPlaying))
	Available() bool
}

// Engine is the presentation relay behind the HTTP surface. It polls
// the bridge on an interval and keeps the latest snapshot plus a
// thumbnail of its artwork. The bridge itself stays stateless; all
// retention lives here, downstream of it.
type Engine struct {
	logger  *zap.Logger
	cfg     domain.Config
	bridge  Querier
	fetcher domain.Fetcher
	thumb   domain.Thumbnailer

	cancel context.CancelFunc

	mu          sync.RWMutex
	pollSeq     uint64
	appliedSeq  uint64
	current     *domain.NowPlaying
	thumbnail   []byte
	lastTrackID string
	lastArtURL  string
}

// New creates a new relay engine
func New(
	logger *zap.Logger,
	cfg domain.Config,
	bridge Querier,
	fetch domain.Fetcher,
	thumb domain.Thumbnailer,
) *Engine {
	return &Engine{
		logger:  logger,
		cfg:     cfg,
		bridge:  bridge,
		fetcher: fetch,
		thumb:   thumb,
	}
}

// Start launches the polling loop in a goroutine and returns
// immediately
func (e *Engine) Start(ctx context.Context) error {
	loopCtx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	if !e.bridge.Available() {
		e.logger.Warn("Bridge has no live source, relay will serve manual entries only")
	}

	go e.runLoop(loopCtx)
	e.logger.Info("Engine started",
		zap.Int("pollIntervalSeconds", e.cfg.PollIntervalSeconds()))
	return nil
}

// Stop halts the polling loop
func (e *Engine) Stop(ctx context.Context) error {
	if e.cancel != nil {
		e.cancel()
	}
	e.logger.Info("Engine stopped")
	return nil
}

// runLoop queries the bridge once per interval. Each query is an
// independent one-shot; a query still in flight when the next tick
// fires simply lands later. Answers carry the sequence number of the
// poll that issued them, and apply drops any answer that arrives after
// a newer one has already been applied.
func (e *Engine) runLoop(ctx context.Context) {
	interval := time.Duration(e.cfg.PollIntervalSeconds()) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	e.poll(ctx)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Engine loop stopped")
			return
		case <-ticker.C:
			e.poll(ctx)
		}
	}
}

// poll issues one bridge query and feeds the answer into the snapshot
func (e *Engine) poll(ctx context.Context) {
	e.mu.Lock()
	e.pollSeq++
	seq := e.pollSeq
	e.mu.Unlock()

	e.bridge.GetNowPlayingInfo(func(info *domain.NowPlaying) {
		if ctx.Err() != nil {
			return
		}
		e.apply(ctx, seq, info)
	})
}

// apply updates the snapshot and refreshes the thumbnail when the
// track identity or artwork changed. Out-of-order answers from slow
// queries are dropped so an old poll can never overwrite a newer
// snapshot.
func (e *Engine) apply(ctx context.Context, seq uint64, info *domain.NowPlaying) {
	e.mu.Lock()
	if seq <= e.appliedSeq {
		e.mu.Unlock()
		return
	}
	e.appliedSeq = seq
	e.current = info

	if info == nil {
		changed := e.lastTrackID != ""
		e.thumbnail = nil
		e.lastTrackID = ""
		e.lastArtURL = ""
		e.mu.Unlock()
		if changed {
			e.logger.Info("Nothing playing")
		}
		return
	}

	trackChanged := info.TrackID() != e.lastTrackID
	artChanged := info.ArtURL != e.lastArtURL
	e.lastTrackID = info.TrackID()
	e.mu.Unlock()

	if trackChanged {
		e.logger.Info("Track changed",
			zap.String("title", info.Title),
			zap.String("artist", info.Artist),
			zap.String("status", string(info.Status)))
	}

	if !trackChanged && !artChanged {
		return
	}

	e.refreshThumbnail(ctx, info.ArtURL)
}

// refreshThumbnail fetches and downsizes artwork; failures leave the
// previous thumbnail cleared rather than stale
func (e *Engine) refreshThumbnail(ctx context.Context, artURL string) {
	e.mu.Lock()
	e.thumbnail = nil
	e.lastArtURL = artURL
	e.mu.Unlock()

	if artURL == "" {
		return
	}

	data, err := e.fetcher.Fetch(ctx, artURL)
	if err != nil {
		e.logger.Warn("Failed to fetch artwork", zap.Error(err))
		return
	}

	thumb, err := e.thumb.Thumbnail(ctx, data)
	if err != nil {
		e.logger.Warn("Failed to generate thumbnail", zap.Error(err))
		return
	}

	e.mu.Lock()
	e.thumbnail = thumb
	e.mu.Unlock()
}

// Snapshot returns the latest now-playing metadata, or nil when
// nothing is playing
func (e *Engine) Snapshot() *domain.NowPlaying {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.current == nil {
		return nil
	}
	info := *e.current
	return &info
}

// ArtworkThumbnail returns the current thumbnail JPEG, or nil when
// none is available
func (e *Engine) ArtworkThumbnail() []byte {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.thumbnail
}
