package fx

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/atrium-hq/atrium/internal/shared"
	"github.com/atrium-hq/atrium/internal/view"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
}

func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		templates: templates,
		csrf:      csrf,
	}
}

// MountRoutes attaches the ad-spend wallet pages.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/new", h.ShowForm)
	r.Post("/", h.Create)
	r.Post("/{id}/delete", h.Delete)
}

// List renders the wallet overview page.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ov, err := h.service.Overview(r.Context())
	if err != nil {
		h.logger.Error("wallet overview", slog.Any("error", err))
		http.Error(w, "Failed to load ad spend", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/finance/adspend_list.html", "Ad Spend", map[string]any{
		"Overview": ov,
	})
}

// ShowForm renders the load/spend entry form.
func (h *Handler) ShowForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/finance/adspend_form.html", "New Wallet Entry", map[string]any{
		"Errors": map[string]string{},
	})
}

// Create records a wallet movement. Loads without counterparty details get
// the manual-entry sentinels; that rule lives here, not in the service.
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
		Rate:        r.PostFormValue("rate"),
		CompanyName: r.PostFormValue("company_name"),
		Platform:    r.PostFormValue("platform"),
		OccurredAt:  occurredAt,
	}
	if req.Kind == string(KindLoad) {
		if req.CompanyName == "" {
			req.CompanyName = ManualLoadCompany
		}
		if req.Platform == "" {
			req.Platform = ManualLoadPlatform
		}
	}

	if _, err := h.service.Record(r.Context(), req, currentUserID(r)); err != nil {
		if errors.Is(err, ErrValidation) || errors.Is(err, ErrInsufficientBalance) {
			h.renderFormError(w, r, err.Error())
			return
		}
		h.logger.Error("record wallet entry", slog.Any("error", err))
		http.Error(w, "Failed to record entry", http.StatusInternalServerError)
		return
	}

	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Wallet entry recorded"})
	}
	http.Redirect(w, r, "/finance/adspend", http.StatusSeeOther)
}

// Delete removes a wallet event.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid entry ID", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), id, currentUserID(r)); err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Entry not found", http.StatusNotFound)
			return
		}
		h.logger.Error("delete wallet entry", slog.Any("error", err), slog.Int64("id", id))
		http.Error(w, "Failed to delete entry", http.StatusInternalServerError)
		return
	}

	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Wallet entry deleted"})
	}
	http.Redirect(w, r, "/finance/adspend", http.StatusSeeOther)
}

func (h *Handler) renderFormError(w http.ResponseWriter, r *http.Request, msg string) {
	w.WriteHeader(http.StatusUnprocessableEntity)
	h.render(w, r, "pages/finance/adspend_form.html", "New Wallet Entry", map[string]any{
		"Errors": map[string]string{"form": msg},
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

func currentUserID(r *http.Request) int64 {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0
	}
	id, _ := strconv.ParseInt(sess.User(), 10, 64)
	return id
}
