package statement

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/atrium-hq/atrium/internal/ledger"
)

// Handler serves statement exports. It asks the ledger for the annotated,
// period-scoped lines and hands the finished statement to an export format.
type Handler struct {
	logger        *slog.Logger
	ledger        *ledger.Service
	renderer      *Renderer
	pdf           *PDFClient
	accountHolder string
}

func NewHandler(logger *slog.Logger, ledgerService *ledger.Service, renderer *Renderer, pdf *PDFClient, accountHolder string) *Handler {
	return &Handler{
		logger:        logger,
		ledger:        ledgerService,
		renderer:      renderer,
		pdf:           pdf,
		accountHolder: accountHolder,
	}
}

// MountRoutes attaches the export endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/statements/export.csv", h.ExportCSV)
	r.Get("/statements/export.pdf", h.ExportPDF)
}

func (h *Handler) build(r *http.Request) (Statement, error) {
	period, err := ledger.PeriodFromQuery(r.URL.Query())
	if err != nil {
		return Statement{}, err
	}
	ov, err := h.ledger.Overview(r.Context(), period)
	if err != nil {
		return Statement{}, err
	}
	return Build(ov.Lines, ov.Summary, period, h.accountHolder)
}

// ExportCSV streams the statement as a CSV download.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	st, err := h.build(r)
	if err != nil {
		h.respondBuildError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(st, "csv")))
	if err := WriteCSV(w, st); err != nil {
		h.logger.Error("stream statement csv", slog.Any("error", err))
	}
}

// ExportPDF renders the statement through Gotenberg and serves the PDF.
func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	st, err := h.build(r)
	if err != nil {
		h.respondBuildError(w, err)
		return
	}

	html, err := h.renderer.HTML(st)
	if err != nil {
		h.logger.Error("render statement html", slog.Any("error", err))
		http.Error(w, "Failed to render statement", http.StatusInternalServerError)
		return
	}
	pdf, err := h.pdf.RenderHTML(r.Context(), html)
	if err != nil {
		h.logger.Error("convert statement pdf", slog.Any("error", err))
		http.Error(w, "PDF service unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(st, "pdf")))
	_, _ = w.Write(pdf)
}

func (h *Handler) respondBuildError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrEmptyPeriod):
		http.Error(w, "No transactions in the selected period", http.StatusUnprocessableEntity)
	case errors.Is(err, ledger.ErrValidation):
		http.Error(w, "Invalid period", http.StatusBadRequest)
	default:
		h.logger.Error("build statement", slog.Any("error", err))
		http.Error(w, "Failed to build statement", http.StatusInternalServerError)
	}
}

func exportFilename(st Statement, ext string) string {
	label := strings.ReplaceAll(strings.ToLower(st.Period.Label()), " ", "-")
	return fmt.Sprintf("statement-%s.%s", label, ext)
}
