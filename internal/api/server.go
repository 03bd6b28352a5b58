// Package api provides the Bible REST API server.
package api

import (
	"fmt"
	"net/http"
	"os"

	"github.com/openscripture/bibleapi/internal/catalog"
	"github.com/openscripture/bibleapi/internal/importer"
	"github.com/openscripture/bibleapi/internal/logging"
	"github.com/openscripture/bibleapi/internal/server"
	"github.com/openscripture/bibleapi/internal/source"
	"github.com/openscripture/bibleapi/internal/store"
)

// Server serves translations from a catalog over HTTP.
type Server struct {
	cfg      Config
	catalog  *catalog.Catalog
	store    *store.Store
	importer *importer.Importer
	hub      *Hub
}

// New builds a server from configuration: a filesystem source provider
// over SourcesDir, and, when DatabasePath is set, a store backing the
// import endpoint.
func New(cfg Config) (*Server, error) {
	provider, err := source.NewFSProvider(cfg.SourcesDir)
	if err != nil {
		return nil, fmt.Errorf("opening sources: %w", err)
	}
	var opts []catalog.Option
	if cfg.DocumentCacheSize > 0 {
		opts = append(opts, catalog.WithDocumentCacheSize(cfg.DocumentCacheSize))
	}
	s := NewWithCatalog(cfg, catalog.New(provider, opts...))

	if cfg.DatabasePath != "" {
		st, err := store.Open(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		s.store = st
		s.importer = importer.New(s.catalog, st)
	}
	return s, nil
}

// NewWithCatalog builds a server over an existing catalog. No import
// endpoint is registered without a store.
func NewWithCatalog(cfg Config, cat *catalog.Catalog) *Server {
	return &Server{cfg: cfg, catalog: cat, hub: NewHub()}
}

// Handler returns the fully wired HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /v1/data", s.handleTranslations)
	mux.HandleFunc("GET /v1/data/{translation}", s.handleTranslation)
	mux.HandleFunc("GET /v1/data/{translation}/random", s.handleRandom)
	mux.HandleFunc("GET /v1/data/{translation}/random/{bookset}", s.handleRandom)
	mux.HandleFunc("GET /v1/data/{translation}/{book}", s.handleChapters)
	mux.HandleFunc("GET /v1/data/{translation}/{book}/{chapter}", s.handleVerses)
	mux.HandleFunc("GET /v1/search", s.handleSearch)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /{ref}", s.handleReference)
	if s.importer != nil {
		mux.HandleFunc("POST /v1/import/{translation}", s.handleImport)
	}

	var handler http.Handler = mux
	handler = logging.CombinedMiddleware(handler)
	handler = server.SecurityHeadersMiddleware(handler)
	handler = server.CORSMiddleware(server.CORSConfig{AllowedOrigins: s.cfg.AllowedOrigins}, handler)
	return handler
}

// Start runs the hub and blocks serving HTTP (or HTTPS when configured).
func (s *Server) Start() error {
	if s.cfg.TLS.Enabled {
		if s.cfg.TLS.CertFile == "" || s.cfg.TLS.KeyFile == "" {
			return fmt.Errorf("TLS enabled but cert or key file not specified")
		}
		if _, err := os.Stat(s.cfg.TLS.CertFile); err != nil {
			return fmt.Errorf("TLS cert file not found: %w", err)
		}
		if _, err := os.Stat(s.cfg.TLS.KeyFile); err != nil {
			return fmt.Errorf("TLS key file not found: %w", err)
		}
	}

	go s.hub.Run()

	protocol := "http"
	if s.cfg.TLS.Enabled {
		protocol = "https"
	} else {
		logging.Warn("TLS disabled - using plain HTTP",
			"recommendation", "consider using TLS or reverse proxy for production")
	}
	logging.ServerStartup("rest_api", protocol, s.cfg.Port,
		"sources_dir", server.AbsPath(s.cfg.SourcesDir),
		"import_enabled", s.importer != nil)

	addr := fmt.Sprintf(":%d", s.cfg.Port)
	httpServer := &http.Server{Addr: addr, Handler: s.Handler()}
	if s.cfg.TLS.Enabled {
		return httpServer.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
	}
	return httpServer.ListenAndServe()
}

// Close releases the store, if any.
func (s *Server) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
