package bridge

import (
	"context"
	"time"

	"go.uber.org/zap"

	"nowbridge/internal/domain"
)

const defaultQueryTimeout = 5 * time.Second

// Bridge answers one question: what is playing right now. It probes its
// sources once at construction and thereafter serves independent
// one-shot queries, delivering each result through a completion
// callback. There is no shared mutable state between queries, no
// caching and no cancellation; a query runs to completion or yields nil.
type Bridge struct {
	logger       *zap.Logger
	sources      []domain.Source
	queryTimeout time.Duration
}

// New builds a bridge over the given sources, in priority order. Each
// source is probed exactly once here; sources whose capability cannot
// be resolved are dropped and never retried.
func New(logger *zap.Logger, sources ...domain.Source) *Bridge {
	b := &Bridge{
		logger:       logger,
		queryTimeout: defaultQueryTimeout,
	}

	for _, src := range sources {
		if !src.Available() {
			logger.Warn("Now-playing source unavailable, skipping",
				zap.String("source", src.Name()))
			continue
		}
		logger.Info("Now-playing source resolved",
			zap.String("source", src.Name()))
		b.sources = append(b.sources, src)
	}

	if len(b.sources) == 0 {
		logger.Warn("No now-playing source available, all queries will report nothing playing")
	}

	return b
}

// Available reports whether any source resolved at startup. Callers may
// use this to label the UI, but an unavailable bridge still answers
// queries: every completion receives nil.
func (b *Bridge) Available() bool {
	return len(b.sources) > 0
}

// GetNowPlayingInfo asynchronously queries the session broker and hands
// the result to completion. The callback is invoked exactly once, from
// a separate goroutine, with either populated metadata or nil. A nil
// result covers both "nothing is playing" and "broker unreachable";
// callers must not tell the two apart.
//
// The timeout is enforced here, not delegated to the sources: a broker
// call that ignores its context still cannot stall the completion. The
// buffered channel lets a late answer land and be discarded instead of
// leaking the query goroutine.
func (b *Bridge) GetNowPlayingInfo(completion func(*domain.NowPlaying)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), b.queryTimeout)
		defer cancel()

		results := make(chan *domain.NowPlaying, 1)
		go func() {
			results <- b.query(ctx)
		}()

		select {
		case info := <-results:
			completion(info)
		case <-ctx.Done():
			completion(nil)
		}
	}()
}

// query walks the available sources in priority order and returns the
// first answer. All failures degrade to nil.
func (b *Bridge) query(ctx context.Context) *domain.NowPlaying {
	for _, src := range b.sources {
		info, err := src.Fetch(ctx)
		if err != nil {
			b.logger.Debug("Source query failed",
				zap.String("source", src.Name()),
				zap.Error(err))
			continue
		}
		if info == nil {
			continue
		}
		return info
	}
	return nil
}
