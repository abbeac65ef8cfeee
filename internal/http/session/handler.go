package session

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/budget/internal/http/render"
	"github.com/MrJamesThe3rd/budget/internal/metrics"
	"github.com/MrJamesThe3rd/budget/internal/session"
)

type Handler struct {
	sessions *session.Manager
	tokens   *session.Tokens
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewHandler(sessions *session.Manager, tokens *session.Tokens, m *metrics.Metrics, log *zap.Logger) *Handler {
	return &Handler{sessions: sessions, tokens: tokens, metrics: m, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
}

type sessionResponse struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	id := h.sessions.New()

	token, expires, err := h.tokens.Issue(id)
	if err != nil {
		render.Internal(w, r, h.log, err)
		return
	}

	h.metrics.ActiveSessions.Set(float64(h.sessions.Len()))
	h.log.Info("session created", zap.String("session_id", id))

	render.JSON(w, h.log, http.StatusCreated, sessionResponse{SessionID: id, Token: token, ExpiresAt: expires.UTC()})
}
