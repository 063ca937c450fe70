package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"nowbridge/internal/api"
	"nowbridge/internal/artwork"
	"nowbridge/internal/bridge"
	"nowbridge/internal/config"
	"nowbridge/internal/domain"
	"nowbridge/internal/engine"
	"nowbridge/internal/sharelink"
	"nowbridge/internal/source"
)

// AppOptions is the full dependency graph; kept as a variable so tests
// can validate it
var AppOptions = fx.Options(
	fx.Provide(
		newLogger,
		newConfig,
		source.NewManualSource,
		newPlatformSource,
		newBridge,
		newFetcher,
		newThumbnailer,
		newResolver,
		newEngine,
		newServer,
	),
	fx.Invoke(registerHooks),
)

func main() {
	app := fx.New(
		// Logger configuration
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),

		AppOptions,
	)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Start the application
	if err := app.Start(ctx); err != nil {
		panic(err)
	}

	// Wait for interrupt signal
	<-ctx.Done()

	// Stop the application gracefully
	if err := app.Stop(context.Background()); err != nil {
		panic(err)
	}
}

// newLogger creates a new zap logger instance
func newLogger() (*zap.Logger, error) {
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}
	return logger, nil
}

func newConfig(logger *zap.Logger) (domain.Config, error) {
	return config.Load(logger)
}

func newPlatformSource(logger *zap.Logger) domain.Source {
	return source.NewPlatformSource(logger)
}

// newBridge wires the bridge's source priority: an explicit manual
// entry wins, the live session broker answers otherwise
func newBridge(logger *zap.Logger, manual *source.ManualSource, platform domain.Source) *bridge.Bridge {
	return bridge.New(logger, manual, platform)
}

func newFetcher(logger *zap.Logger, cfg domain.Config) domain.Fetcher {
	return artwork.NewHTTPFetcher(logger, cfg.ArtworkMaxBytes())
}

func newThumbnailer(logger *zap.Logger, cfg domain.Config) domain.Thumbnailer {
	return artwork.NewSquareThumbnailer(logger, cfg.ThumbnailSize())
}

func newResolver(logger *zap.Logger) domain.Resolver {
	return sharelink.NewParser(logger)
}

func newEngine(
	logger *zap.Logger,
	cfg domain.Config,
	b *bridge.Bridge,
	fetch domain.Fetcher,
	thumb domain.Thumbnailer,
) *engine.Engine {
	return engine.New(logger, cfg, b, fetch, thumb)
}

func newServer(
	logger *zap.Logger,
	cfg domain.Config,
	eng *engine.Engine,
	manual *source.ManualSource,
	resolver domain.Resolver,
) *api.Server {
	return api.NewServer(logger, cfg, eng, manual, resolver)
}

// registerHooks sets up application lifecycle hooks
func registerHooks(
	lc fx.Lifecycle,
	logger *zap.Logger,
	eng *engine.Engine,
	srv *api.Server,
	platform domain.Source,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("nowbridge daemon started")
			if err := eng.Start(ctx); err != nil {
				return err
			}
			return srv.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down")
			if err := srv.Stop(ctx); err != nil {
				logger.Warn("HTTP relay shutdown failed", zap.Error(err))
			}
			if err := eng.Stop(ctx); err != nil {
				return err
			}
			// The platform source may hold a session-bus connection
			if c, ok := platform.(io.Closer); ok {
				if err := c.Close(); err != nil {
					logger.Warn("Platform source close failed", zap.Error(err))
				}
			}
			return nil
		},
	})
}
