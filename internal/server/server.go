// Package server exposes the recommender over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"yashubustudio/careermatch/careers"
	"yashubustudio/careermatch/internal/metrics"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// Recommender is the part of careers.Service the HTTP layer needs.
type Recommender interface {
	Recommend(ctx context.Context, req careers.Request) ([]careers.RecommendationResult, error)
	CorpusSize() int
}

// Server holds the HTTP handlers.
type Server struct {
	recommender Recommender
	logger      zerolog.Logger
}

// New constructs a Server around recommender.
func New(recommender Recommender, logger zerolog.Logger) *Server {
	return &Server{
		recommender: recommender,
		logger:      logger.With().Str("component", "server").Logger(),
	}
}

// SetupRouter builds the gin engine with all routes and middleware.
func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestID(), s.observe())

	api := r.Group("/api")
	api.POST("/recommendations", s.Recommendations)
	api.POST("/psychometric", s.Psychometric)

	r.GET("/healthz", s.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.NoRoute(s.NotFound)
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.SetupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.logger.Info().Msg("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}

// requestID reuses an incoming X-Request-ID or assigns a new one, and hands
// it to the engine through the request context.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(careers.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

// observe records metrics and an access log line per request.
func (s *Server) observe() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		took := time.Since(start)
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		status := c.Writer.Status()
		metrics.RecordAPIRequest(c.Request.Method, endpoint, strconv.Itoa(status), took)
		s.logger.Debug().
			Str("request_id", c.GetString(requestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("took", took).
			Msg("request")
	}
}

// Health reports liveness and the loaded corpus size.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "corpus_size": s.recommender.CorpusSize()})
}

// NotFound answers unknown routes with a JSON body.
func (s *Server) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "not found", "path": c.Request.URL.Path})
}

func fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg})
}
