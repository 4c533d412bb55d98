// Package web serves the emotion analysis HTTP API.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/justestif/go-affect-fusion/internal/config"
	"github.com/justestif/go-affect-fusion/internal/logging"
	"github.com/justestif/go-affect-fusion/internal/metrics"
)

// DefaultAddr is the default server address.
const DefaultAddr = ":8000"

// ServerConfig holds server configuration.
type ServerConfig struct {
	Server config.ServerConfig
	CORS   config.CORSConfig
	Logger zerolog.Logger
}

// Server is the HTTP server for the API.
type Server struct {
	router          chi.Router
	server          *http.Server
	handlers        *Handlers
	logger          zerolog.Logger
	shutdownTimeout time.Duration
}

// NewServer creates a new API server backed by svc.
func NewServer(cfg ServerConfig, svc Service) *Server {
	addr := cfg.Server.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	shutdown := cfg.Server.ShutdownTimeout
	if shutdown <= 0 {
		shutdown = 10 * time.Second
	}

	router := chi.NewRouter()
	logger := cfg.Logger.With().Str("component", "web").Logger()

	s := &Server{
		router:          router,
		handlers:        NewHandlers(svc, logger),
		logger:          logger,
		shutdownTimeout: shutdown,
	}

	s.setupMiddleware(cfg.CORS)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s
}

// Handler returns the server's router.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware(cors config.CORSConfig) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(logging.Middleware(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(CORS(cors))
	s.router.Use(metrics.Middleware)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	h := s.handlers

	s.router.Get("/health", h.Health)
	s.router.Handle("/metrics", metrics.Handler())

	s.router.Post("/analyze_multimodal_emotion", h.AnalyzeMultimodal)
	s.router.Post("/analyze_face_emotion", h.AnalyzeFace)
	s.router.Post("/analyze_audio_emotion", h.AnalyzeAudio)
	s.router.Post("/analyze_text_emotion", h.AnalyzeText)
	s.router.Post("/fuse_vad_scores", h.FuseVAD)
	s.router.Post("/get_cbt_strategy", h.Strategy)
	s.router.Post("/generate_gpt_response", h.GenerateResponse)
	s.router.Post("/generate_question", h.GenerateQuestion)
	s.router.Post("/generate_report", h.GenerateReport)
	s.router.Post("/generate_pdf_report", h.GenerateReport)
	s.router.Get("/test_mock", h.Sample)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.server.Addr).Msg("starting server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run starts the server and shuts it down gracefully when ctx is cancelled
// or an interrupt signal arrives.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info().Msg("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info().Msg("server stopped")
	return nil
}
