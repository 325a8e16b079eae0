// Package server is the thin transport layer over the core pipelines: a
// chi HTTP surface for uploads and queries, and a websocket channel that
// relays already-transcribed speech into the retriever.
package server

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/oratohq/orato/internal/ingest"
	"github.com/oratohq/orato/internal/registry"
	"github.com/oratohq/orato/internal/retriever"
)

// Config holds server settings.
type Config struct {
	Port            int
	AllowAllOrigins bool
	MaxUploadBytes  int64
	Collection      string
}

// QueryService answers queries; nil result with nil error means no match.
type QueryService interface {
	Retrieve(ctx context.Context, query string) (*retriever.Result, error)
}

// Ingestor runs the ingestion pipeline over uploaded bytes.
type Ingestor interface {
	IngestReader(ctx context.Context, r io.ReaderAt, size int64, name, docID string) (*ingest.Stats, error)
}

// Server wires the transport surface to the core.
type Server struct {
	cfg        Config
	queries    QueryService
	ingestor   Ingestor
	registry   *registry.Registry
	hub        *Hub
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with all dependencies.
func New(cfg Config, queries QueryService, ingestor Ingestor, reg *registry.Registry) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 64 << 20
	}
	s := &Server{
		cfg:      cfg,
		queries:  queries,
		ingestor: ingestor,
		registry: reg,
		hub:      NewHub(),
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAllOrigins {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/documents", s.handleUpload)
		r.Get("/documents", s.handleListDocuments)
		r.Post("/query", s.handleQuery)
		r.Post("/speech/{clientID}", s.handleSpeechPush)
	})

	r.Get("/ws/{clientID}", s.handleWebsocket)

	return r
}

// Router exposes the underlying router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Hub exposes the websocket connection hub.
func (s *Server) Hub() *Hub { return s.hub }

// Start begins listening on the configured port and blocks.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("orato server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
