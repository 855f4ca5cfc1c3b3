package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/advokit/advokit/dialogue"
	"github.com/advokit/advokit/logging"
	"github.com/advokit/advokit/pipeline"
	"github.com/advokit/advokit/progress"
)

// DefaultStreamInterval is the tick between progress pushes on the SSE
// stream.
const DefaultStreamInterval = 500 * time.Millisecond

// Server is the HTTP surface over the dialogue engine, the pipeline
// orchestrator and the progress store.
type Server struct {
	router chi.Router

	engine *dialogue.Engine
	orch   *pipeline.Orchestrator
	store  *progress.Store

	logger         logging.Logger
	streamInterval time.Duration
	now            func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithStreamInterval overrides the SSE polling cadence, mainly for tests.
func WithStreamInterval(d time.Duration) Option {
	return func(s *Server) { s.streamInterval = d }
}

// WithClock overrides the wall clock used for anchored timer recomputation.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New assembles the server and its router.
func New(engine *dialogue.Engine, orch *pipeline.Orchestrator, store *progress.Store, opts ...Option) *Server {
	s := &Server{
		engine:         engine,
		orch:           orch,
		store:          store,
		logger:         logging.NoOpLogger{},
		streamInterval: DefaultStreamInterval,
		now:            time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.router = s.buildRouter()
	return s
}

// ServeHTTP delegates to the chi router, satisfying http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe starts the server on addr with timeouts sized for SSE
// streaming (no write timeout; streams outlive any fixed deadline).
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      0,
		IdleTimeout:       2 * time.Minute,
	}
	return srv.ListenAndServe()
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(corsMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/dialogue", s.handleDialogue)
		r.Post("/campaigns", s.handleCampaignStart)
		r.Get("/campaigns/{jobID}", s.handleCampaignPoll)
		r.Get("/campaigns/{jobID}/events", s.handleCampaignEvents)
	})
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// dialogueRequest is one conversational turn. A nil state starts a fresh
// conversation; otherwise the caller echoes back the state from the previous
// response.
type dialogueRequest struct {
	Message string          `json:"message"`
	State   *dialogue.State `json:"state"`
}

// handleDialogue applies one turn of the step-flow engine. Input errors are
// reported synchronously and mutate nothing.
func (s *Server) handleDialogue(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req dialogueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res := s.engine.Transition(req.State, req.Message)
	s.writeJSON(w, http.StatusOK, res)
}

// handleCampaignStart launches a detached generation job and returns its id
// before any generation happens.
func (s *Server) handleCampaignStart(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var inputs pipeline.Inputs
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := inputs.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	jobID := s.orch.Start(inputs)
	s.logger.Info("campaign started", "job_id", jobID, "company", inputs.CompanyName)
	s.writeJSON(w, http.StatusAccepted, map[string]string{"jobId": jobID})
}

// handleCampaignPoll returns the current snapshot for a job. An `anchor`
// query parameter (RFC 3339 or unix seconds) makes the displayed timer
// continuous across phase boundaries; `consume=true` deletes a completed
// record once its result has been handed over.
func (s *Server) handleCampaignPoll(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	rec, ok := s.store.Get(jobID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}

	ev := projectRecord(rec)
	if anchor, ok := parseAnchor(r.URL.Query().Get("anchor")); ok {
		ev = anchorTimes(ev, rec, anchor, s.now())
	}

	if rec.Status == progress.StatusCompleted && r.URL.Query().Get("consume") == "true" {
		s.store.Delete(jobID)
	}
	s.writeJSON(w, http.StatusOK, ev)
}

// handleCampaignEvents streams progress as Server-Sent Events until the job
// reaches a terminal status or the client disconnects. Disconnecting stops
// observation only; the pipeline keeps running.
func (s *Server) handleCampaignEvents(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	if !s.store.Exists(jobID) {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	w.WriteHeader(http.StatusOK)

	if err := writeSSE(w, flusher, eventConnected, map[string]string{"jobId": jobID}); err != nil {
		return
	}

	ticker := time.NewTicker(s.streamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			rec, ok := s.store.Get(jobID)
			if !ok {
				// Swept mid-stream: surface it and close.
				_ = writeSSE(w, flusher, eventError, map[string]string{"message": "job not found"})
				return
			}
			ev := projectRecord(rec)
			if rec.Status.Terminal() {
				_ = writeSSE(w, flusher, terminalEventName(rec.Status), ev)
				return
			}
			if err := writeSSE(w, flusher, eventProgress, ev); err != nil {
				return
			}
		}
	}
}

// parseAnchor accepts the continuous-timer anchor as RFC 3339 or unix
// seconds.
func parseAnchor(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if secs, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(secs, 0), true
	}
	return time.Time{}, false
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("writing response failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

// requestLogger logs one line per request with status and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).String(),
		)
	})
}

// corsMiddleware adds CORS headers for browser frontends.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
