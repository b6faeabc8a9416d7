package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"recordnote/internal/document"
	"recordnote/internal/metadata"
	"recordnote/internal/pipeline"
)

type ExtractRequest struct {
	URL       string `json:"url"`
	ReleaseID int    `json:"release_id,omitempty"`
	Document  string `json:"document"`
}

type RunResponse struct {
	ID          string         `json:"id"`
	Input       string         `json:"input"`
	Document    string         `json:"document"`
	State       pipeline.State `json:"state"`
	Label       string         `json:"label"`
	Message     string         `json:"message,omitempty"`
	Error       string         `json:"error,omitempty"`
	Title       string         `json:"title,omitempty"`
	ArtworkRef  string         `json:"artwork,omitempty"`
	CreatedAt   string         `json:"created_at"`
	StartedAt   *string        `json:"started_at,omitempty"`
	CompletedAt *string        `json:"completed_at,omitempty"`
}

type SearchResultResponse struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Year       string `json:"year"`
	Format     string `json:"format"`
	CoverImage string `json:"cover_image,omitempty"`
	URI        string `json:"uri"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	req.URL = strings.TrimSpace(req.URL)
	if req.URL == "" && req.ReleaseID <= 0 {
		http.Error(w, "url or release_id is required", http.StatusBadRequest)
		return
	}

	input := req.URL
	if input == "" {
		input = "release " + strconv.Itoa(req.ReleaseID)
	}

	run := s.runMgr.CreateRun(input, req.Document)
	s.logger.Info("Created run %s for %s", run.ID, input)

	go s.processRun(run.ID, req)

	writeJSON(w, http.StatusAccepted, runToResponse(run))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		http.Error(w, "q is required", http.StatusBadRequest)
		return
	}

	results, err := s.provider.Search(r.Context(), query)
	if err != nil {
		s.logger.Error("Search %q failed: %v", query, err)
		writeJSON(w, searchErrorStatus(err), errorResponse{Error: metadata.UserMessage(err)})
		return
	}

	responses := make([]SearchResultResponse, len(results))
	for i, res := range results {
		responses[i] = SearchResultResponse{
			ID:         res.ID,
			Title:      res.Title,
			Artist:     res.Artist,
			Year:       res.YearLabel(),
			Format:     res.FormatLabel(),
			CoverImage: res.CoverImage,
			URI:        res.URI,
		}
	}
	writeJSON(w, http.StatusOK, responses)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	runs := s.runMgr.ListRuns()
	responses := make([]*RunResponse, len(runs))
	for i, run := range runs {
		responses[i] = runToResponse(run)
	}
	writeJSON(w, http.StatusOK, responses)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	runID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/runs/"), "/")
	if runID == "" {
		http.Error(w, "Run ID required", http.StatusBadRequest)
		return
	}

	run, err := s.runMgr.GetRun(runID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, runToResponse(run))
}

func (s *Server) processRun(runID string, req ExtractRequest) {
	surface := document.NewFileSurface(s.config.VaultDir, req.Document)
	notifier := pipeline.NotifierFunc(func(msg string) {
		s.runMgr.UpdateRun(runID, func(r *Run) {
			r.Message = msg
		})
	})

	p := pipeline.New(s.config, s.provider, s.artwork, surface, notifier, s.logger)
	p.Hooks.OnState = func(state pipeline.State) {
		// Terminal states are recorded below together with the outcome.
		if state.Terminal() {
			return
		}
		s.runMgr.UpdateRun(runID, func(r *Run) {
			r.State = state
		})
	}

	s.logger.Info("Starting run %s", runID)

	var (
		res pipeline.Result
		err error
	)
	if req.URL != "" {
		res, err = p.Run(s.ctx, req.URL)
	} else {
		res, err = p.RunResult(s.ctx, metadata.SearchResult{ID: req.ReleaseID})
	}

	if err != nil {
		s.logger.Error("Run %s failed: %v", runID, err)
		s.runMgr.UpdateRun(runID, func(r *Run) {
			r.State = pipeline.StateFailed
			r.Error = err.Error()
		})
		return
	}

	s.runMgr.UpdateRun(runID, func(r *Run) {
		r.State = pipeline.StateDelivered
		r.Title = res.Release.Title
		r.ArtworkRef = res.ArtworkRef
		r.Document = res.Document
	})
	s.logger.Info("Run %s delivered to %s", runID, res.Document)
}

func searchErrorStatus(err error) int {
	switch {
	case errors.Is(err, metadata.ErrMissingCredentials):
		return http.StatusServiceUnavailable
	case errors.Is(err, metadata.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, metadata.ErrRemoteLookupFailed),
		errors.Is(err, metadata.ErrNetwork),
		errors.Is(err, metadata.ErrMalformedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func runToResponse(run Run) *RunResponse {
	resp := &RunResponse{
		ID:         run.ID,
		Input:      run.Input,
		Document:   run.Document,
		State:      run.State,
		Label:      run.State.Label(),
		Message:    run.Message,
		Error:      run.Error,
		Title:      run.Title,
		ArtworkRef: run.ArtworkRef,
		CreatedAt:  run.CreatedAt.Format("2006-01-02 15:04:05"),
	}

	if run.StartedAt != nil {
		started := run.StartedAt.Format("2006-01-02 15:04:05")
		resp.StartedAt = &started
	}

	if run.CompletedAt != nil {
		completed := run.CompletedAt.Format("2006-01-02 15:04:05")
		resp.CompletedAt = &completed
	}

	return resp
}
