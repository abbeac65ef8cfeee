package transaction

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/budget/internal/http/auth"
	"github.com/MrJamesThe3rd/budget/internal/http/filter"
	"github.com/MrJamesThe3rd/budget/internal/http/render"
	"github.com/MrJamesThe3rd/budget/internal/metrics"
	"github.com/MrJamesThe3rd/budget/internal/session"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

type Handler struct {
	sessions *session.Manager
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func NewHandler(sessions *session.Manager, m *metrics.Metrics, log *zap.Logger) *Handler {
	return &Handler{sessions: sessions, metrics: m, log: log}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Delete("/", h.clear)
}

type createTransactionRequest struct {
	Date     text `json:"date"`
	Type     text `json:"type"`
	Amount   text `json:"amount"`
	Currency text `json:"currency"`
	Category text `json:"category"`
	Note     text `json:"note"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Error(w, h.log, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	var tx *transaction.Transaction

	err := h.sessions.Do(r.Context(), auth.SessionID(r.Context()), func(ctx context.Context, ledger *transaction.Service) error {
		var err error
		tx, err = ledger.Add(ctx, transaction.Candidate{
			Date:     string(req.Date),
			Type:     string(req.Type),
			Amount:   string(req.Amount),
			Currency: string(req.Currency),
			Category: string(req.Category),
			Note:     string(req.Note),
		})

		return err
	})

	var vErr *transaction.ValidationError
	if errors.As(err, &vErr) {
		render.JSON(w, h.log, http.StatusUnprocessableEntity, ToValidationResponse(vErr))
		return
	}

	if err != nil {
		render.Internal(w, r, h.log, err)
		return
	}

	h.metrics.TransactionsCreated.Inc()

	render.JSON(w, h.log, http.StatusCreated, ToResponse(tx))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	f, err := filter.Parse(r.URL.Query())
	if err != nil {
		render.Error(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	var txs []*transaction.Transaction

	err = h.sessions.Do(r.Context(), auth.SessionID(r.Context()), func(ctx context.Context, ledger *transaction.Service) error {
		seq, err := ledger.List(ctx, f)
		if err != nil {
			return err
		}

		txs = slices.Collect(seq)

		return nil
	})
	if err != nil {
		render.Internal(w, r, h.log, err)
		return
	}

	render.JSON(w, h.log, http.StatusOK, ToResponseList(txs))
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	err := h.sessions.Do(r.Context(), auth.SessionID(r.Context()), func(ctx context.Context, ledger *transaction.Service) error {
		return ledger.Clear(ctx)
	})
	if err != nil {
		render.Internal(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
