package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"nowbridge/internal/domain"
)

// Relay is the slice of the engine the API serves from
type Relay interface {
	Snapshot() *domain.NowPlaying
	ArtworkThumbnail() []byte
}

// ManualStore is the writable side of the manual source
type ManualStore interface {
	Set(info domain.NowPlaying)
	Clear()
}

// Server exposes the relay over HTTP. Reads come from the engine
// snapshot; writes go to the manual source, optionally via the
// share-link resolver.
type Server struct {
	logger   *zap.Logger
	relay    Relay
	manual   ManualStore
	resolver domain.Resolver
	srv      *http.Server
}

// NewServer creates the HTTP relay server
func NewServer(
	logger *zap.Logger,
	cfg domain.Config,
	relay Relay,
	manual ManualStore,
	resolver domain.Resolver,
) *Server {
	s := &Server{
		logger:   logger,
		relay:    relay,
		manual:   manual,
		resolver: resolver,
	}
	s.srv = &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           s.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// router builds the gin engine with all routes registered
func (s *Server) router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/v1")
	{
		v1.GET("/nowplaying", s.getNowPlaying)
		v1.PUT("/nowplaying", s.putNowPlaying)
		v1.DELETE("/nowplaying", s.deleteNowPlaying)
		v1.POST("/sharelink", s.postShareLink)
		v1.GET("/artwork", s.getArtwork)
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}

// getNowPlaying returns the latest snapshot, or 204 when nothing is
// playing. An unreachable broker and an idle session look identical
// here, on purpose.
func (s *Server) getNowPlaying(c *gin.Context) {
	info := s.relay.Snapshot()
	if info == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, info)
}

// putNowPlaying stores a manual now-playing entry
func (s *Server) putNowPlaying(c *gin.Context) {
	var info domain.NowPlaying
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid now-playing payload"})
		return
	}
	if info.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	s.manual.Set(info)
	c.JSON(http.StatusOK, info)
}

// deleteNowPlaying clears the manual entry
func (s *Server) deleteNowPlaying(c *gin.Context) {
	s.manual.Clear()
	c.Status(http.StatusNoContent)
}

type shareLinkRequest struct {
	URL string `json:"url" binding:"required"`
}

// postShareLink resolves a public share link and stores the result as
// the manual entry
func (s *Server) postShareLink(c *gin.Context) {
	var req shareLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	info, err := s.resolver.Resolve(ctx, req.URL)
	if err != nil {
		s.logger.Warn("Share link resolution failed",
			zap.String("url", req.URL),
			zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "could not resolve share link"})
		return
	}

	s.manual.Set(*info)
	c.JSON(http.StatusOK, info)
}

// getArtwork serves the current thumbnail JPEG
func (s *Server) getArtwork(c *gin.Context) {
	thumb := s.relay.ArtworkThumbnail()
	if len(thumb) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no artwork available"})
		return
	}
	c.Data(http.StatusOK, "image/jpeg", thumb)
}

// Start begins serving in a background goroutine
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("HTTP relay listening", zap.String("addr", s.srv.Addr))
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP relay failed", zap.Error(err))
		}
	}()
	return nil
}

// Stop shuts the server down gracefully
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("HTTP relay shutting down")
	return s.srv.Shutdown(ctx)
}
