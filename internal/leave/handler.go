package leave

import (
	"context"
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
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf}
}

// MountRoutes attaches the employee-facing leave pages.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Mine)
	r.Get("/new", h.ShowForm)
	r.Post("/", h.Submit)
}

// MountAdminRoutes attaches the approval pages; the router guards them with
// the admin middleware.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Get("/pending", h.Pending)
	r.Post("/{id}/approve", h.decision((*Service).Approve, "Request approved"))
	r.Post("/{id}/reject", h.decision((*Service).Reject, "Request rejected"))
}

// Mine lists the caller's requests.
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	requests, err := h.service.Mine(r.Context(), currentUserID(r))
	if err != nil {
		h.logger.Error("list leave", slog.Any("error", err))
		http.Error(w, "Failed to load leave requests", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/leave/list.html", "Leave", map[string]any{
		"Requests": requests,
	})
}

// ShowForm renders the submission form.
func (h *Handler) ShowForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/leave/form.html", "Request Leave", map[string]any{
		"Errors": map[string]string{},
		"Types":  []Type{TypeAnnual, TypeSick, TypeUnpaid},
	})
}

// Submit files a new request from the posted form.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	start, err1 := time.ParseInLocation("2006-01-02", r.PostFormValue("start_date"), time.UTC)
	end, err2 := time.ParseInLocation("2006-01-02", r.PostFormValue("end_date"), time.UTC)
	if err1 != nil || err2 != nil {
		h.renderFormError(w, r, "start_date and end_date must be dates")
		return
	}

	req := SubmitRequest{
		Type:      r.PostFormValue("type"),
		StartDate: start,
		EndDate:   end,
		Reason:    r.PostFormValue("reason"),
	}
	if _, err := h.service.Submit(r.Context(), req, currentUserID(r)); err != nil {
		if errors.Is(err, ErrValidation) {
			h.renderFormError(w, r, err.Error())
			return
		}
		h.logger.Error("submit leave", slog.Any("error", err))
		http.Error(w, "Failed to submit request", http.StatusInternalServerError)
		return
	}

	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: "Leave request submitted"})
	}
	http.Redirect(w, r, "/leave", http.StatusSeeOther)
}

// Pending lists open requests for approvers.
func (h *Handler) Pending(w http.ResponseWriter, r *http.Request) {
	requests, err := h.service.Pending(r.Context())
	if err != nil {
		h.logger.Error("list pending leave", slog.Any("error", err))
		http.Error(w, "Failed to load pending requests", http.StatusInternalServerError)
		return
	}
	h.render(w, r, "pages/leave/pending.html", "Pending Leave", map[string]any{
		"Requests": requests,
	})
}

func (h *Handler) decision(fn func(*Service, context.Context, int64, int64) error, success string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			http.Error(w, "Invalid request ID", http.StatusBadRequest)
			return
		}

		if err := fn(h.service, r.Context(), id, currentUserID(r)); err != nil {
			switch {
			case errors.Is(err, ErrNotFound):
				http.Error(w, "Request not found", http.StatusNotFound)
				return
			case errors.Is(err, ErrAlreadySettled):
				if sess := shared.SessionFromContext(r.Context()); sess != nil {
					sess.AddFlash(shared.FlashMessage{Kind: "error", Message: "Request was already settled"})
				}
			default:
				h.logger.Error("settle leave", slog.Any("error", err), slog.Int64("id", id))
				http.Error(w, "Failed to settle request", http.StatusInternalServerError)
				return
			}
		} else if sess := shared.SessionFromContext(r.Context()); sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "success", Message: success})
		}
		http.Redirect(w, r, "/leave/pending", http.StatusSeeOther)
	}
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

func (h *Handler) renderFormError(w http.ResponseWriter, r *http.Request, msg string) {
	w.WriteHeader(http.StatusUnprocessableEntity)
	h.render(w, r, "pages/leave/form.html", "Request Leave", map[string]any{
		"Errors": map[string]string{"form": msg},
		"Types":  []Type{TypeAnnual, TypeSick, TypeUnpaid},
	})
}

func currentUserID(r *http.Request) int64 {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0
	}
	id, _ := strconv.ParseInt(sess.User(), 10, 64)
	return id
}
