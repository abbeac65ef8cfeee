package importer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/budget/internal/http/auth"
	"github.com/MrJamesThe3rd/budget/internal/http/render"
	httptx "github.com/MrJamesThe3rd/budget/internal/http/transaction"
	"github.com/MrJamesThe3rd/budget/internal/importer"
	"github.com/MrJamesThe3rd/budget/internal/metrics"
	"github.com/MrJamesThe3rd/budget/internal/session"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

type Handler struct {
	importSvc *importer.Service
	sessions  *session.Manager
	metrics   *metrics.Metrics
	log       *zap.Logger
	maxBytes  int64
	now       func() time.Time
}

func NewHandler(importSvc *importer.Service, sessions *session.Manager, m *metrics.Metrics, log *zap.Logger, maxBytes int64) *Handler {
	return &Handler{
		importSvc: importSvc,
		sessions:  sessions,
		metrics:   m,
		log:       log,
		maxBytes:  maxBytes,
		now:       time.Now,
	}
}

// Routes registers the upload endpoint. It needs a session.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importFile)
}

type rejectionResponse struct {
	Row int `json:"row"`
	httptx.ValidationResponse
}

type importResponse struct {
	Total    int                 `json:"total"`
	Accepted []httptx.Response   `json:"accepted"`
	Rejected []rejectionResponse `json:"rejected"`
}

type fileErrorResponse struct {
	Kind  transaction.Kind `json:"kind"`
	Error string           `json:"error"`
}

func (h *Handler) importFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			render.Error(w, h.log, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", h.maxBytes))
			return
		}

		render.Error(w, h.log, http.StatusBadRequest, "failed to parse form: "+err.Error())

		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		render.Error(w, h.log, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	format, err := importer.FormatFromFilename(header.Filename)
	if s := r.FormValue("format"); s != "" {
		format, err = importer.ParseFormat(s)
	}

	if err != nil {
		h.metrics.FailedImports.Inc()
		render.JSON(w, h.log, http.StatusBadRequest, fileErrorResponse{Kind: transaction.KindFileUnreadable, Error: err.Error()})

		return
	}

	var report *importer.Report

	err = h.sessions.Do(r.Context(), auth.SessionID(r.Context()), func(ctx context.Context, ledger *transaction.Service) error {
		var err error
		report, err = h.importSvc.Import(ctx, ledger, format, file)

		return err
	})

	var fileErr *importer.FileError
	if errors.As(err, &fileErr) {
		h.metrics.FailedImports.Inc()
		render.JSON(w, h.log, http.StatusBadRequest, fileErrorResponse{Kind: fileErr.Kind, Error: fileErr.Error()})

		return
	}

	if err != nil {
		render.Internal(w, r, h.log, err)
		return
	}

	h.metrics.ImportedRows.Add(float64(len(report.Accepted)))

	resp := importResponse{
		Total:    report.Total,
		Accepted: httptx.ToResponseList(report.Accepted),
		Rejected: make([]rejectionResponse, 0, len(report.Rejected)),
	}

	for _, rej := range report.Rejected {
		h.metrics.RejectedRows.WithLabelValues(string(rej.Err.Kind)).Inc()
		resp.Rejected = append(resp.Rejected, rejectionResponse{Row: rej.Row, ValidationResponse: httptx.ToValidationResponse(rej.Err)})
	}

	render.JSON(w, h.log, http.StatusOK, resp)
}

// Template serves the import template. It needs no session.
func (h *Handler) Template(w http.ResponseWriter, r *http.Request) {
	format := importer.FormatXLSX

	if s := r.URL.Query().Get("format"); s != "" {
		f, err := importer.ParseFormat(s)
		if err != nil {
			render.Error(w, h.log, http.StatusBadRequest, err.Error())
			return
		}

		format = f
	}

	var rows []transaction.Candidate

	if s := r.URL.Query().Get("samples"); s != "" {
		withSamples, err := strconv.ParseBool(s)
		if err != nil {
			render.Error(w, h.log, http.StatusBadRequest, "samples must be true or false")
			return
		}

		if withSamples {
			rows = importer.SampleRows(h.now())
		}
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="budget_template.%s"`, format))

	if err := importer.WriteTemplate(w, format, rows); err != nil {
		h.log.Error("failed to write template", zap.Error(err))
	}
}
