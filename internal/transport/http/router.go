package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"clarity-score-service/internal/app"
	"clarity-score-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// SessionCounter reports live quiz sessions; the Redis session store implements it.
type SessionCounter interface {
	ActiveSessions(ctx context.Context) (int, error)
}

// RouterConfig carries the routing knobs that come from configuration.
type RouterConfig struct {
	DefaultQuestionnaireID string
	AllowedOrigins         []string
	Sessions               SessionCounter
}

// API serves the questionnaire, navigation, results and share endpoints.
type API struct {
	service *app.QuizService
	cfg     RouterConfig
	logger  *zap.Logger
}

func NewAPI(service *app.QuizService, cfg RouterConfig, logger *zap.Logger) *API {
	if cfg.DefaultQuestionnaireID == "" {
		cfg.DefaultQuestionnaireID = domain.DefaultQuestionnaireID
	}
	return &API{service: service, cfg: cfg, logger: logger}
}

// NewRouter mounts every route, including the websocket quiz endpoint.
func NewRouter(api *API, ws *WSHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(api.logger), middleware.Recoverer)

	origins := api.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ws", ws.ServeWS)

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", api.handleStats)
		r.Get("/results", api.handleResults)
		r.Get("/share/{platform}", api.handleShare)
		r.Route("/questionnaires/{id}", func(r chi.Router) {
			r.Get("/", api.handleQuestionnaire)
			r.Post("/navigation", api.handleNavigation)
			r.Get("/results", api.handleResults)
		})
	})
	return r
}

func (a *API) questionnaireID(r *http.Request) string {
	if id := chi.URLParam(r, "id"); id != "" {
		return id
	}
	return a.cfg.DefaultQuestionnaireID
}

func (a *API) handleQuestionnaire(w http.ResponseWriter, r *http.Request) {
	q, err := a.service.Questionnaire(r.Context(), a.questionnaireID(r))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

type navigationRequest struct {
	Name    string          `json:"name"`
	Answers []domain.Answer `json:"answers"`
}

func (a *API) handleNavigation(w http.ResponseWriter, r *http.Request) {
	var req navigationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "invalid navigation payload"})
		return
	}
	nav, err := a.service.Navigate(r.Context(), a.questionnaireID(r), req.Name, req.Answers)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nav)
}

// handleResults never fails on missing score parameters; the decoder fills them in.
func (a *API) handleResults(w http.ResponseWriter, r *http.Request) {
	results, err := a.service.Results(r.Context(), a.questionnaireID(r), a.resultsBase(r), "?"+r.URL.RawQuery)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (a *API) handleShare(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: "missing url"})
		return
	}
	link, err := a.service.ShareLink(chi.URLParam(r, "platform"), target)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

func (a *API) handleStats(w http.ResponseWriter, r *http.Request) {
	if a.cfg.Sessions == nil {
		writeJSON(w, http.StatusOK, map[string]any{"activeSessions": nil})
		return
	}
	n, err := a.cfg.Sessions.ActiveSessions(r.Context())
	if err != nil {
		a.logger.Warn("count active sessions", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, errorPayload{Message: "session count unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"activeSessions": n})
}

func (a *API) resultsBase(r *http.Request) string {
	base := a.service.ResultsBase()
	if len(base) > 0 && base[0] == '/' {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		return scheme + "://" + r.Host + base
	}
	return base
}

type errorPayload struct {
	Message string `json:"message"`
}

func (a *API) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrQuestionnaireNotFound), errors.Is(err, domain.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrQuestionNotFound), errors.Is(err, domain.ErrUnknownPlatform),
		errors.Is(err, domain.ErrInvalidQuestionnaire):
		status = http.StatusBadRequest
	default:
		a.logger.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, errorPayload{Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
