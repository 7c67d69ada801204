package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agenthands/distill/internal/audio"
	"github.com/agenthands/distill/internal/config"
	"github.com/agenthands/distill/internal/core/conversation"
	"github.com/agenthands/distill/internal/core/extraction"
	"github.com/agenthands/distill/internal/core/query"
	apperrors "github.com/agenthands/distill/internal/errors"
	"github.com/agenthands/distill/internal/llm"
	"github.com/agenthands/distill/internal/logger"
	"github.com/agenthands/distill/internal/store"
)

// Dependencies are the collaborators of the HTTP API. LLM is nil when no
// credential is configured; the model-backed routes then answer 503.
type Dependencies struct {
	Config      *config.Config
	Store       *store.Store
	LLM         llm.LLMClient
	Transcriber audio.Transcriber
	Synthesizer audio.Synthesizer
	Logger      *zap.Logger
}

type Server struct {
	// mu serializes every handler: the store and the sessions are not
	// safe for concurrent use.
	mu sync.Mutex

	cfg         *config.Config
	store       *store.Store
	extractor   *extraction.Extractor
	engine      *query.Engine
	interviewer *conversation.Interviewer
	sessions    map[string]*conversation.State
	log         *zap.Logger
}

func NewServer(deps Dependencies) *Server {
	cfg := deps.Config
	if cfg == nil {
		cfg = config.Default()
	}
	s := &Server{
		cfg:      cfg,
		store:    deps.Store,
		sessions: make(map[string]*conversation.State),
		log:      logger.Or(deps.Logger),
	}
	if deps.LLM != nil {
		s.extractor = extraction.NewExtractor(deps.LLM, cfg.Extraction)
		s.engine = query.NewEngine(deps.LLM, cfg.Query)
		s.interviewer = conversation.NewInterviewer(deps.LLM, cfg.Conversation)
		if deps.Transcriber != nil {
			s.interviewer.WithAudio(deps.Transcriber, deps.Synthesizer, cfg.Audio.Dir)
		}
	}
	return s
}

func (s *Server) SetupRouter() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(ginLogger(s.log))
	r.Use(gin.Recovery())
	r.Use(s.serialize)

	r.GET("/health", s.Health)

	api := r.Group("/api")
	{
		api.GET("/health", s.Health)

		kb := api.Group("/kb")
		kb.GET("", s.ExportKB)
		kb.PUT("", s.ImportKB)
		kb.GET("/stats", s.Stats)
		kb.GET("/concepts", s.ListConcepts)
		kb.GET("/concepts/:name", s.GetConcept)
		kb.PUT("/concepts/:name", s.PutConcept)
		kb.GET("/relationships", s.ListRelationships)
		kb.POST("/relationships", s.AddRelationship)

		model := api.Group("", s.requireModel)
		model.POST("/extract", s.Extract)
		model.POST("/query", s.Query)
		model.POST("/sessions", s.CreateSession)
		model.GET("/sessions/:id", s.GetSession)
		model.POST("/sessions/:id/messages", s.PostMessage)
		model.POST("/sessions/:id/audio", s.PostAudio)
	}

	return r
}

func (s *Server) serialize(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Next()
}

func (s *Server) requireModel(c *gin.Context) {
	if s.extractor == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": apperrors.ErrNoCredentials.Message})
		return
	}
	c.Next()
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"backend":       s.store.Backend(),
		"model_enabled": s.extractor != nil,
	})
}

// respondError maps the error kind to a status and logs server-side
// failures.
func (s *Server) respondError(c *gin.Context, err error, msg string) {
	status := http.StatusInternalServerError
	switch {
	case apperrors.IsErrorType(err, apperrors.ErrorTypeInput):
		status = http.StatusBadRequest
	case apperrors.IsErrorType(err, apperrors.ErrorTypeTransport):
		status = http.StatusBadGateway
	case apperrors.IsErrorType(err, apperrors.ErrorTypeConfig):
		status = http.StatusServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		s.log.Error(msg, zap.Error(err))
	}
	c.JSON(status, gin.H{"error": msg, "detail": err.Error()})
}

func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}

// Run serves the API on port until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: s.SetupRouter(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Server listening", zap.String("port", port))
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

	s.log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
