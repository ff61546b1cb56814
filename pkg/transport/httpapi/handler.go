package httpapi

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formflow/pkg/metrics"
	"github.com/goliatone/go-formflow/pkg/openapi"
	"github.com/goliatone/go-formflow/pkg/review"
	"github.com/goliatone/go-formflow/pkg/schema"
	"github.com/goliatone/go-formflow/pkg/submission"
	"github.com/goliatone/go-formflow/pkg/widgets"
	"github.com/goliatone/go-formflow/pkg/workflow"
)

// ErrTooManySessions is returned when the session limit is reached.
var ErrTooManySessions = errors.New("httpapi: too many sessions")

// Handler serves workflows of one form over HTTP. Each session owns a
// workflow.Controller guarded by its own mutex.
type Handler struct {
	model     *schema.Model
	logger    zerolog.Logger
	metrics   *metrics.Collector
	review    *review.HTMLRenderer
	widgets   *widgets.Registry
	ids       func() string
	options   []workflow.Option
	maxBodies int64
	maxSess   int

	router chi.Router

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	mu   sync.Mutex
	ctrl *workflow.Controller
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithMetrics records workflow activity and serves GET /metrics.
func WithMetrics(c *metrics.Collector) Option {
	return func(h *Handler) {
		h.metrics = c
	}
}

// WithSubmitter sets the submitter used by every session.
func WithSubmitter(s submission.Submitter) Option {
	return func(h *Handler) {
		if s != nil {
			h.options = append(h.options, workflow.WithSubmitter(s))
		}
	}
}

// WithWorkflowOptions appends options applied to every new controller.
func WithWorkflowOptions(opts ...workflow.Option) Option {
	return func(h *Handler) {
		h.options = append(h.options, opts...)
	}
}

// WithReviewRenderer overrides the HTML review renderer.
func WithReviewRenderer(r *review.HTMLRenderer) Option {
	return func(h *Handler) {
		if r != nil {
			h.review = r
		}
	}
}

// WithWidgetRegistry overrides the widget hints reported for each step.
func WithWidgetRegistry(reg *widgets.Registry) Option {
	return func(h *Handler) {
		if reg != nil {
			h.widgets = reg
		}
	}
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(ids func() string) Option {
	return func(h *Handler) {
		if ids != nil {
			h.ids = ids
		}
	}
}

// WithMaxSessions caps concurrent sessions. Zero means unlimited.
func WithMaxSessions(n int) Option {
	return func(h *Handler) {
		h.maxSess = n
	}
}

// New builds a Handler for model.
func New(model *schema.Model, options ...Option) (*Handler, error) {
	if model == nil {
		return nil, errors.New("httpapi: schema model is nil")
	}
	h := &Handler{
		model:     model,
		logger:    zerolog.Nop(),
		ids:       submission.NewID,
		widgets:   widgets.NewRegistry(),
		maxBodies: 1 << 20,
		sessions:  make(map[string]*session),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(h)
	}
	if h.review == nil {
		r, err := review.NewHTMLRenderer(review.WithConfirmLabel("Submit this form?"))
		if err != nil {
			return nil, err
		}
		h.review = r
	}
	h.router = h.routes()
	return h, nil
}

// Routes returns the router so it can be mounted under a prefix.
func (h *Handler) Routes() chi.Router {
	return h.router
}

func (h *Handler) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.requestLogger)

	r.Get("/schema", h.getSchema)
	r.Get("/openapi.json", h.getOpenAPI)
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics.Handler())
	}

	r.Post(openapi.SessionsPath, h.createSession)
	r.Route(openapi.SessionPath, func(r chi.Router) {
		r.Delete("/", h.deleteSession)
		r.Get("/state", h.withSession(h.getState))
		r.Put("/fields/{name}", h.withSession(h.setField))
		r.Post("/next", h.withSession(h.transition((*workflow.Controller).Next)))
		r.Post("/previous", h.withSession(h.transition((*workflow.Controller).Previous)))
		r.Post("/submit", h.withSession(h.transition((*workflow.Controller).Submit)))
		r.Post("/cancel", h.withSession(h.transition((*workflow.Controller).Cancel)))
		r.Post("/confirm", h.withSession(h.confirm))
		r.Get("/review", h.withSession(h.getReview))
	})
	return r
}

// ServeHTTP lets a Handler be mounted directly.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// SessionCount reports the number of live sessions.
func (h *Handler) SessionCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		h.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("http request")
	})
}

func (h *Handler) getSchema(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.model.FormSchema())
}

func (h *Handler) getOpenAPI(w http.ResponseWriter, r *http.Request) {
	raw, err := openapi.MarshalJSON(openapi.Document(h.model))
	if err != nil {
		h.logger.Error().Err(err).Msg("encode openapi document")
		writeError(w, http.StatusInternalServerError, codeInternal, "could not encode document", nil)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (h *Handler) createSession(w http.ResponseWriter, _ *http.Request) {
	opts := append([]workflow.Option{workflow.WithLogger(h.logger)}, h.options...)
	if h.metrics != nil {
		opts = append(opts, workflow.WithObserver(h.metrics))
	}
	ctrl, err := workflow.New(h.model, opts...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, codeInternal, err.Error(), nil)
		return
	}

	h.mu.Lock()
	if h.maxSess > 0 && len(h.sessions) >= h.maxSess {
		h.mu.Unlock()
		writeError(w, http.StatusServiceUnavailable, codeTooManySessions, ErrTooManySessions.Error(), nil)
		return
	}
	id := h.ids()
	h.sessions[id] = &session{ctrl: ctrl}
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.SessionStarted()
	}
	h.logger.Info().Str("session", id).Msg("session started")
	w.Header().Set("Location", openapi.SessionsPath+"/"+id)
	writeJSON(w, http.StatusCreated, h.describe(id, ctrl, ctrl.Snapshot()))
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "session")

	h.mu.Lock()
	s, ok := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, codeUnknownSession, "unknown session", nil)
		return
	}
	s.mu.Lock()
	submitted := s.ctrl.Phase() == workflow.PhaseSubmitted
	s.mu.Unlock()
	if h.metrics != nil && !submitted {
		h.metrics.SessionAbandoned()
	}
	w.WriteHeader(http.StatusNoContent)
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, id string, ctrl *workflow.Controller)

// withSession resolves the session and holds its lock for the whole request.
func (h *Handler) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "session")
		h.mu.Lock()
		s, ok := h.sessions[id]
		h.mu.Unlock()
		if !ok {
			writeError(w, http.StatusNotFound, codeUnknownSession, "unknown session", nil)
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		next(w, r, id, s.ctrl)
	}
}

func (h *Handler) getState(w http.ResponseWriter, _ *http.Request, id string, ctrl *workflow.Controller) {
	writeJSON(w, http.StatusOK, h.describe(id, ctrl, ctrl.Snapshot()))
}

type fieldUpdate struct {
	Value any `json:"value"`
}

func (h *Handler) setField(w http.ResponseWriter, r *http.Request, id string, ctrl *workflow.Controller) {
	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxBodies))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "could not read body", nil)
		return
	}
	var update fieldUpdate
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "invalid JSON body: "+err.Error(), nil)
		return
	}

	state, err := ctrl.SetField(chi.URLParam(r, "name"), update.Value)
	if err != nil {
		h.writeWorkflowError(w, id, ctrl, state, err)
		return
	}
	writeJSON(w, http.StatusOK, h.describe(id, ctrl, state))
}

func (h *Handler) transition(call func(*workflow.Controller) (workflow.State, error)) sessionHandler {
	return func(w http.ResponseWriter, _ *http.Request, id string, ctrl *workflow.Controller) {
		state, err := call(ctrl)
		if err != nil {
			h.writeWorkflowError(w, id, ctrl, state, err)
			return
		}
		writeJSON(w, http.StatusOK, h.describe(id, ctrl, state))
	}
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request, id string, ctrl *workflow.Controller) {
	state, err := ctrl.Confirm(r.Context())
	if err != nil {
		h.writeWorkflowError(w, id, ctrl, state, err)
		return
	}
	resp := h.describe(id, ctrl, state)
	if receipt, ok := ctrl.Receipt(); ok {
		resp.Receipt = &receipt
	}
	h.release(id)
	writeJSON(w, http.StatusOK, resp)
}

// release drops a submitted session so finished runs do not hold capacity.
// Callers may hold the session lock; h.mu is never held while taking it.
func (h *Handler) release(id string) {
	h.mu.Lock()
	delete(h.sessions, id)
	h.mu.Unlock()
	h.logger.Debug().Str("session", id).Msg("submitted session released")
}

func (h *Handler) getReview(w http.ResponseWriter, _ *http.Request, _ string, ctrl *workflow.Controller) {
	summary := review.Build(ctrl.Model(), ctrl.Snapshot().Values, nil)
	html, err := h.review.RenderString(summary)
	if err != nil {
		h.logger.Error().Err(err).Msg("render review")
		writeError(w, http.StatusInternalServerError, codeInternal, "could not render review", nil)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, html)
}
