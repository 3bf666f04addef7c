package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"paperflow/internal/api"
	"paperflow/internal/config"
	"paperflow/internal/logging"
	"paperflow/internal/paper"
	"paperflow/internal/services/arxiv"
	"paperflow/internal/services/feishu"
	"paperflow/internal/stage"
	"paperflow/internal/workflow"
)

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon
	runSvc *api.RunService
	dedup  *feishu.Deduper

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) *apiServer {
	srv := &apiServer{
		bind:   strings.TrimSpace(cfg.Paths.APIBind),
		logger: logger,
		daemon: d,
		runSvc: api.NewRunService(d.store),
		dedup:  feishu.NewDeduper(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/trigger", srv.handleTrigger)
	mux.HandleFunc("/api/resume", srv.handleResume)
	mux.HandleFunc("/api/status/", srv.handleRunStatus)
	mux.HandleFunc("/api/runs", srv.handleRuns)
	mux.HandleFunc("/api/runs/clear", srv.handleRunsClear)
	mux.HandleFunc("/api/health", srv.handleHealth)
	mux.HandleFunc("/api/feishu/callback", srv.handleFeishuCallback)

	// No WriteTimeout: trigger and resume hold the connection for the
	// length of an advance, which is bounded by the engine's own
	// timeouts rather than the server's.
	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (s *apiServer) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleTrigger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.TriggerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sourceURL := strings.TrimSpace(req.SourceURL)
	if sourceURL == "" {
		s.writeError(w, http.StatusBadRequest, "source_url is required")
		return
	}

	kind := paper.ParseSourceKind(req.Kind)
	if strings.TrimSpace(req.Kind) == "" {
		kind = arxiv.DetectKind(sourceURL)
	}

	outcome, err := s.daemon.engine.Trigger(r.Context(), sourceURL, kind)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromOutcome(outcome))
}

func (s *apiServer) handleResume(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req api.ResumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	runKey := strings.TrimSpace(req.RunKey)
	if runKey == "" {
		s.writeError(w, http.StatusBadRequest, "run_key is required")
		return
	}

	outcome, err := s.daemon.engine.Resume(r.Context(), runKey, resumeInput(req))
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.FromOutcome(outcome))
}

func (s *apiServer) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	key := strings.TrimPrefix(r.URL.Path, "/api/status/")
	if key == "" || strings.Contains(key, "/") {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	summary, err := s.runSvc.Describe(r.Context(), key)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if summary == nil {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	s.writeJSON(w, http.StatusOK, *summary)
}

func (s *apiServer) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var statuses []paper.Status
	for _, value := range r.URL.Query()["status"] {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		status, err := paper.ParseStatus(trimmed)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		statuses = append(statuses, status)
	}

	runs, err := s.runSvc.List(r.Context(), statuses...)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.RunListResponse{Runs: runs})
}

func (s *apiServer) handleRunsClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	removed, err := s.runSvc.Clear(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.ClearResponse{Removed: removed})
}

func (s *apiServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	stages := make([]api.StageHealth, len(status.Stages))
	for i, st := range status.Stages {
		stages[i] = api.StageHealth{Name: st.Name, Ready: st.Ready, Detail: st.Detail}
	}
	counts, err := s.runSvc.Stats(r.Context())
	if err != nil {
		s.log().Warn("failed to collect run stats", logging.Error(err))
	}
	payload := api.HealthResponse{
		Running:      status.Running,
		PID:          status.PID,
		DatabasePath: status.DatabasePath,
		LockFilePath: status.LockFilePath,
		Store: api.StoreHealth{
			Total:     status.Store.Total,
			InFlight:  status.Store.InFlight,
			Waiting:   status.Store.Waiting,
			Completed: status.Store.Completed,
			Failed:    status.Store.Failed,
		},
		StatusCounts: counts,
		Stages:       stages,
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func resumeInput(req api.ResumeRequest) stage.ResumeInput {
	return stage.ResumeInput{
		Decision: req.Decision,
		Tags:     req.Tags,
		Comment:  req.Comment,
	}
}

func (s *apiServer) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, workflow.ErrRunNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, workflow.ErrNotAwaitingDecision):
		s.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		s.writeError(w, http.StatusGatewayTimeout, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return logging.NewComponentLogger(s.logger, "api-server")
	}
	return logging.NewNop()
}
