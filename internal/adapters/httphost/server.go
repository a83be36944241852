// Package httphost exposes conversation sessions over REST. It is the
// transport the platform frontend talks to; the engine core stays free of
// HTTP concerns.
package httphost

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/velora-app/flowengine/internal/logging"
	"github.com/velora-app/flowengine/internal/runtime"
	"github.com/velora-app/flowengine/pkg/domain"
	"github.com/velora-app/flowengine/pkg/ports"
	"github.com/velora-app/flowengine/pkg/session"
)

// transcript is a MessageSink that records everything a session emits.
type transcript struct {
	mu   sync.Mutex
	msgs []domain.Message
}

func (tr *transcript) OnMessage(msg domain.Message) {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	tr.msgs = append(tr.msgs, msg)
}

func (tr *transcript) all() []domain.Message {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	out := make([]domain.Message, len(tr.msgs))
	copy(out, tr.msgs)
	return out
}

type liveSession struct {
	sess *runtime.Session
	sink *transcript
}

// Server hosts conversation sessions over one flow graph.
type Server struct {
	graph    *domain.Graph
	manager  *session.Manager
	logger   *slog.Logger
	sessOpts []runtime.Option

	mu   sync.Mutex
	live map[string]*liveSession
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithSessionOptions forwards options (adapters, hooks, voice mode...) to
// every session the server creates.
func WithSessionOptions(opts ...runtime.Option) Option {
	return func(s *Server) { s.sessOpts = append(s.sessOpts, opts...) }
}

// NewServer creates a host over the graph, persisting snapshots through
// the given store.
func NewServer(graph *domain.Graph, store ports.StateStore, opts ...Option) *Server {
	s := &Server{
		graph:   graph,
		manager: session.NewManager(store),
		logger:  logging.NewNop(),
		live:    make(map[string]*liveSession),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/", s.handleList)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Post("/messages", s.handleMessage)
			r.Post("/speech-complete", s.handleSpeechComplete)
		})
	})

	return r
}

type createRequest struct {
	TenantID  string         `json:"tenantId"`
	SessionID string         `json:"sessionId,omitempty"`
	Variables map[string]any `json:"variables,omitempty"`
}

type messageRequest struct {
	Text string `json:"text"`
}

type sessionResponse struct {
	SessionID  string             `json:"sessionId"`
	TenantID   string             `json:"tenantId,omitempty"`
	Messages   []domain.Message   `json:"messages"`
	Variables  map[string]any     `json:"variables"`
	Suspension *domain.Suspension `json:"suspension,omitempty"`
	Terminated bool               `json:"terminated"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body createRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	id := body.SessionID
	if id == "" {
		id = uuid.NewString()
	}

	sink := &transcript{}
	opts := append([]runtime.Option{
		runtime.WithSessionID(id),
		runtime.WithTenant(body.TenantID),
		runtime.WithLogger(s.logger),
	}, s.sessOpts...)
	if len(body.Variables) > 0 {
		opts = append(opts, runtime.WithRestored(&domain.Snapshot{
			SessionID: id,
			TenantID:  body.TenantID,
			Context:   domain.NewContext("").WithVariables(body.Variables),
		}))
	}
	sess := runtime.NewSession(s.graph, sink, opts...)

	s.mu.Lock()
	s.live[id] = &liveSession{sess: sess, sink: sink}
	s.mu.Unlock()

	if err := sess.Start(r.Context()); err != nil {
		s.logger.Error("session start failed", "session", id, "err", err)
		if errors.Is(err, runtime.ErrMissingStartNode) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		// Fatal engine errors already produced a user-facing message; the
		// session state below reflects the termination.
	}

	s.persist(r, id)
	writeJSON(w, http.StatusCreated, s.respond(id))
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ids, err := s.manager.List(r.Context())
	if err != nil {
		http.Error(w, "failed to list sessions", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if _, ok := s.lookup(id); !ok {
		// Fall back to the store for sessions from a previous process.
		snap, err := s.manager.Load(r.Context(), id)
		if err != nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		s.revive(snap)
	}
	writeJSON(w, http.StatusOK, s.respond(id))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	s.mu.Lock()
	ls, ok := s.live[id]
	delete(s.live, id)
	s.mu.Unlock()
	if ok {
		ls.sess.Reset()
	}

	if err := s.manager.Delete(r.Context(), id); err != nil {
		s.logger.Warn("failed to delete persisted session", "session", id, "err", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	ls, ok := s.lookup(id)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	var body messageRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := ls.sess.SubmitUserResponse(r.Context(), body.Text); err != nil {
		if errors.Is(err, runtime.ErrNoPendingInput) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		s.logger.Error("session resume failed", "session", id, "err", err)
	}

	s.persist(r, id)
	writeJSON(w, http.StatusOK, s.respond(id))
}

func (s *Server) handleSpeechComplete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	ls, ok := s.lookup(id)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	if err := ls.sess.NotifySynthesisComplete(r.Context()); err != nil {
		if errors.Is(err, runtime.ErrNoPendingSynthesis) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		s.logger.Error("session resume failed", "session", id, "err", err)
	}

	s.persist(r, id)
	writeJSON(w, http.StatusOK, s.respond(id))
}

func (s *Server) lookup(id string) (*liveSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ls, ok := s.live[id]
	return ls, ok
}

// revive rebuilds a live session from a persisted snapshot.
func (s *Server) revive(snap *domain.Snapshot) {
	sink := &transcript{msgs: snap.Messages}
	opts := append([]runtime.Option{
		runtime.WithLogger(s.logger),
		runtime.WithRestored(snap),
	}, s.sessOpts...)
	sess := runtime.NewSession(s.graph, sink, opts...)

	s.mu.Lock()
	s.live[snap.SessionID] = &liveSession{sess: sess, sink: sink}
	s.mu.Unlock()
}

func (s *Server) persist(r *http.Request, id string) {
	ls, ok := s.lookup(id)
	if !ok {
		return
	}
	snap := ls.sess.Snapshot()
	snap.Messages = ls.sink.all()
	if err := s.manager.Save(r.Context(), id, &snap); err != nil {
		s.logger.Error("failed to persist session", "session", id, "err", err)
	}
}

func (s *Server) respond(id string) sessionResponse {
	ls, ok := s.lookup(id)
	if !ok {
		return sessionResponse{SessionID: id}
	}
	cx := ls.sess.Context()
	return sessionResponse{
		SessionID:  id,
		TenantID:   ls.sess.TenantID(),
		Messages:   ls.sink.all(),
		Variables:  cx.Variables,
		Suspension: ls.sess.Suspended(),
		Terminated: ls.sess.Terminated(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
