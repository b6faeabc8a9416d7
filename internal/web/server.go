package web

import (
	"context"
	"net/http"

	"recordnote/internal/config"
	"recordnote/internal/logger"
	"recordnote/internal/metadata"
	"recordnote/internal/pipeline"
)

// Server exposes the pipeline over HTTP. Each extract request starts an
// independent run writing to the document named in the request.
type Server struct {
	ctx      context.Context
	runMgr   *RunManager
	config   config.Settings
	provider metadata.Provider
	artwork  pipeline.ArtworkFetcher
	logger   *logger.Logger
}

// NewServer creates a server. Runs are cancelled when ctx is.
func NewServer(ctx context.Context, runMgr *RunManager, cfg config.Settings, provider metadata.Provider, artwork pipeline.ArtworkFetcher, log *logger.Logger) *Server {
	return &Server{
		ctx:      ctx,
		runMgr:   runMgr,
		config:   cfg,
		provider: provider,
		artwork:  artwork,
		logger:   log,
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/extract", s.handleExtract)
	mux.HandleFunc("/api/search", s.handleSearch)
	mux.HandleFunc("/api/runs", s.handleListRuns)
	mux.HandleFunc("/api/runs/", s.handleGetRun)
	mux.HandleFunc("/ws", s.handleWebSocket)

	return s.loggingMiddleware(mux)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
