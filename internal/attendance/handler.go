package attendance

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/atrium-hq/atrium/internal/ledger"
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

// MountRoutes attaches the attendance pages.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Month)
	r.Post("/check-in", h.action(func(s *Service) entryAction { return s.CheckIn }, "Checked in"))
	r.Post("/check-out", h.action(func(s *Service) entryAction { return s.CheckOut }, "Checked out"))
	r.Post("/break/start", h.action(func(s *Service) entryAction { return s.StartBreak }, "Break started"))
	r.Post("/break/end", h.action(func(s *Service) entryAction { return s.EndBreak }, "Break ended"))
}

// Month renders the timesheet for the requested month, defaulting to the
// current UTC month.
func (h *Handler) Month(w http.ResponseWriter, r *http.Request) {
	period, err := ledger.PeriodFromQuery(r.URL.Query())
	if err != nil || period.Mode != ledger.PeriodMonthly {
		http.Error(w, "Invalid period", http.StatusBadRequest)
		return
	}

	userID := currentUserID(r)
	entries, err := h.service.Month(r.Context(), userID, period)
	if err != nil {
		h.logger.Error("list attendance", slog.Any("error", err))
		http.Error(w, "Failed to load attendance", http.StatusInternalServerError)
		return
	}

	var total time.Duration
	for _, e := range entries {
		total += e.Worked()
	}

	h.render(w, r, map[string]any{
		"Entries":     entries,
		"PeriodLabel": period.Label(),
		"TotalWorked": total.Round(time.Minute).String(),
	})
}

type entryAction func(ctx context.Context, userID int64) (*Entry, error)

func (h *Handler) action(pick func(*Service) entryAction, success string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fn := pick(h.service)
		if _, err := fn(r.Context(), currentUserID(r)); err != nil {
			switch {
			case errors.Is(err, ErrAlreadyCheckedIn),
				errors.Is(err, ErrNotCheckedIn),
				errors.Is(err, ErrAlreadyCheckedOut),
				errors.Is(err, ErrBreakOpen),
				errors.Is(err, ErrNoBreakOpen):
				if sess := shared.SessionFromContext(r.Context()); sess != nil {
					sess.AddFlash(shared.FlashMessage{Kind: "error", Message: err.Error()})
				}
			default:
				h.logger.Error("attendance action", slog.Any("error", err))
				http.Error(w, "Attendance action failed", http.StatusInternalServerError)
				return
			}
		} else if sess := shared.SessionFromContext(r.Context()); sess != nil {
			sess.AddFlash(shared.FlashMessage{Kind: "success", Message: success})
		}
		http.Redirect(w, r, "/attendance", http.StatusSeeOther)
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, data map[string]any) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken := ""
	if h.csrf != nil && sess != nil {
		csrfToken, _ = h.csrf.EnsureToken(r.Context(), sess)
	}
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	if err := h.templates.Render(w, "pages/attendance/month.html", view.TemplateData{
		Title:       "Attendance",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}); err != nil {
		h.logger.Error("render attendance", slog.Any("error", err))
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
