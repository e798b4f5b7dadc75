package ledger

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/atrium-hq/atrium/internal/platform/httpx"
	"github.com/atrium-hq/atrium/internal/shared"
	"github.com/atrium-hq/atrium/internal/view"
)

// WalletBalanceProvider exposes the ad-spend wallet balance for the finance
// dashboard without coupling the ledger to the fx package.
type WalletBalanceProvider interface {
	Balance(ctx context.Context) (decimal.Decimal, error)
}

type Handler struct {
	logger    *slog.Logger
	service   *Service
	wallet    WalletBalanceProvider
	templates *view.Engine
	csrf      *shared.CSRFManager
}

func NewHandler(logger *slog.Logger, service *Service, wallet WalletBalanceProvider, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		wallet:    wallet,
		templates: templates,
		csrf:      csrf,
	}
}

// Dashboard renders the finance dashboard for the requested period.
// Defaults to the current UTC month.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	period, err := periodFromQuery(r)
	if err != nil {
		http.Error(w, "Invalid period", http.StatusBadRequest)
		return
	}

	ov, err := h.service.Overview(r.Context(), period)
	if err != nil {
		h.logger.Error("build overview", slog.Any("error", err))
		http.Error(w, "Failed to load dashboard", http.StatusInternalServerError)
		return
	}

	data := map[string]any{
		"Overview":    ov,
		"PeriodLabel": period.Label(),
		"Margin":      ov.Summary.Margin().StringFixed(1),
	}
	if h.wallet != nil {
		if balance, err := h.wallet.Balance(r.Context()); err == nil {
			data["WalletBalance"] = balance.StringFixed(2)
		} else {
			h.logger.Warn("wallet balance", slog.Any("error", err))
		}
	}
	h.render(w, r, "pages/finance/dashboard.html", "Finance", data)
}

// OverviewJSON serves the dashboard payload for async refreshes.
func (h *Handler) OverviewJSON(w http.ResponseWriter, r *http.Request) {
	period, err := periodFromQuery(r)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	ov, err := h.service.Overview(r.Context(), period)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		h.logger.Error("overview json", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, ov)
}

// List renders the full transaction history, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	lines, err := h.service.History(r.Context())
	if err != nil {
		h.logger.Error("list transactions", slog.Any("error", err))
		http.Error(w, "Failed to load transactions", http.StatusInternalServerError)
		return
	}
	// History is chronological; present newest first.
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	h.render(w, r, "pages/finance/transactions_list.html", "Transactions", map[string]any{
		"Lines": lines,
	})
}

// ShowForm renders the new-transaction form.
func (h *Handler) ShowForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/finance/transaction_form.html", "New Transaction", map[string]any{
		"Errors": map[string]string{},
		"Kinds":  []Kind{KindIncome, KindExpense, KindDeposit, KindWithdrawal},
	})
}

// Create records a new ledger event from the posted form.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	occurredAt, err := time.ParseInLocation("2006-01-02", r.PostFormValue("occurred_at"), time.UTC)
	if err != nil {
		h.renderFormError(w, r, "occurred_at must be a date")
		return
	}

	req := CreateEventRequest{
		Kind:        r.PostFormValue("kind"),
		Amount:      r.PostFormValue("amount"),
		Category:    r.PostFormValue("category"),
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		OccurredAt:  occurredAt,
	}

	if _, err := h.service.Record(r.Context(), req, currentUserID(r)); err != nil {
		if errors.Is(err, ErrValidation) {
			h.renderFormError(w, r, err.Error())
			return
		}
		h.logger.Error("record transaction", slog.Any("error", err))
		http.Error(w, "Failed to record transaction", http.StatusInternalServerError)
		return
	}

	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Transaction recorded"})
	}
	http.Redirect(w, r, "/finance/transactions", http.StatusSeeOther)
}

// Delete removes an event and forces a full balance recomputation.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid transaction ID", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), id, currentUserID(r)); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Transaction not found", http.StatusNotFound)
			return
		}
		h.logger.Error("delete transaction", slog.Any("error", err), slog.Int64("id", id))
		http.Error(w, "Failed to delete transaction", http.StatusInternalServerError)
		return
	}

	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Transaction deleted"})
	}
	http.Redirect(w, r, "/finance/transactions", http.StatusSeeOther)
}

func (h *Handler) renderFormError(w http.ResponseWriter, r *http.Request, msg string) {
	w.WriteHeader(http.StatusUnprocessableEntity)
	h.render(w, r, "pages/finance/transaction_form.html", "New Transaction", map[string]any{
		"Errors": map[string]string{"form": msg},
		"Kinds":  []Kind{KindIncome, KindExpense, KindDeposit, KindWithdrawal},
	})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page, title string, data map[string]any) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken := ""
	if h.csrf != nil && sess != nil {
		csrfToken, _ = h.csrf.EnsureToken(r.Context(), sess)
	}
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	if err := h.templates.Render(w, page, view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}); err != nil {
		h.logger.Error("render page", slog.String("page", page), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func periodFromQuery(r *http.Request) (Period, error) {
	return PeriodFromQuery(r.URL.Query())
}

func currentUserID(r *http.Request) int64 {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0
	}
	id, _ := strconv.ParseInt(sess.User(), 10, 64)
	return id
}
