package report

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/budget/internal/http/auth"
	"github.com/MrJamesThe3rd/budget/internal/http/filter"
	"github.com/MrJamesThe3rd/budget/internal/http/render"
	"github.com/MrJamesThe3rd/budget/internal/report"
	"github.com/MrJamesThe3rd/budget/internal/session"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	sessions *session.Manager
	log      *zap.Logger
	now      func() time.Time
}

func NewHandler(sessions *session.Manager, log *zap.Logger) *Handler {
	return &Handler{sessions: sessions, log: log, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/summary", h.summary)
	r.Get("/report", h.document)
	r.Get("/export", h.export)
}

type entryResponse struct {
	Group    string               `json:"group"`
	Currency transaction.Currency `json:"currency"`
	Income   string               `json:"income"`
	Expense  string               `json:"expense"`
	Net      string               `json:"net"`
}

type summaryResponse struct {
	GroupBy report.GroupBy  `json:"group_by"`
	Entries []entryResponse `json:"entries"`
}

// snapshot lists the session's entries matching the request filters. The returned sequence is
// detached from the ledger, so it can be ranged over after the session lock is released.
func (h *Handler) snapshot(r *http.Request, f transaction.ListFilter) (iter.Seq[*transaction.Transaction], error) {
	var txs []*transaction.Transaction

	err := h.sessions.Do(r.Context(), auth.SessionID(r.Context()), func(ctx context.Context, ledger *transaction.Service) error {
		seq, err := ledger.List(ctx, f)
		if err != nil {
			return err
		}

		txs = slices.Collect(seq)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return slices.Values(txs), nil
}

func (h *Handler) query(w http.ResponseWriter, r *http.Request) (transaction.ListFilter, report.GroupBy, bool) {
	f, err := filter.Parse(r.URL.Query())
	if err != nil {
		render.Error(w, h.log, http.StatusBadRequest, err.Error())
		return f, "", false
	}

	by, err := report.ParseGroupBy(r.URL.Query().Get("group_by"))
	if err != nil {
		render.Error(w, h.log, http.StatusBadRequest, err.Error())
		return f, "", false
	}

	return f, by, true
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	f, by, ok := h.query(w, r)
	if !ok {
		return
	}

	seq, err := h.snapshot(r, f)
	if err != nil {
		render.Internal(w, r, h.log, err)
		return
	}

	s := report.Summarize(seq, by)

	resp := summaryResponse{GroupBy: s.GroupBy, Entries: make([]entryResponse, 0, s.Len())}
	for _, e := range s.Entries() {
		resp.Entries = append(resp.Entries, entryResponse{
			Group:    e.Group,
			Currency: e.Currency,
			Income:   transaction.FormatAmount(e.Income),
			Expense:  transaction.FormatAmount(e.Expense),
			Net:      transaction.FormatAmount(e.Net),
		})
	}

	render.JSON(w, h.log, http.StatusOK, resp)
}

func (h *Handler) document(w http.ResponseWriter, r *http.Request) {
	f, by, ok := h.query(w, r)
	if !ok {
		return
	}

	seq, err := h.snapshot(r, f)
	if err != nil {
		render.Internal(w, r, h.log, err)
		return
	}

	render.JSON(w, h.log, http.StatusOK, report.BuildDocument(report.NewPeriod(f), seq, by, h.now()))
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	f, err := filter.Parse(r.URL.Query())
	if err != nil {
		render.Error(w, h.log, http.StatusBadRequest, err.Error())
		return
	}

	seq, err := h.snapshot(r, f)
	if err != nil {
		render.Internal(w, r, h.log, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="budget_export_%s.xlsx"`, h.now().Format("20060102_150405")))

	if err := report.WriteWorkbook(w, seq); err != nil {
		h.log.Error("failed to write workbook", zap.Error(err))
	}
}
