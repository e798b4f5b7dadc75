package app

import (
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/atrium-hq/atrium/internal/attendance"
	"github.com/atrium-hq/atrium/internal/auth"
	"github.com/atrium-hq/atrium/internal/leave"
	"github.com/atrium-hq/atrium/internal/ledger"
	"github.com/atrium-hq/atrium/internal/ledger/fx"
	"github.com/atrium-hq/atrium/internal/observability"
	"github.com/atrium-hq/atrium/internal/projects"
	"github.com/atrium-hq/atrium/internal/shared"
	"github.com/atrium-hq/atrium/internal/statement"
	"github.com/atrium-hq/atrium/internal/view"
	"github.com/atrium-hq/atrium/jobs"
	"github.com/atrium-hq/atrium/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Templates      *view.Engine
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	AuthHandler       *auth.Handler
	LedgerHandler     *ledger.Handler
	FXHandler         *fx.Handler
	StatementHandler  *statement.Handler
	AttendanceHandler *attendance.Handler
	LeaveHandler      *leave.Handler
	ProjectsHandler   *projects.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with Atrium defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Landing page for unauthenticated users.
	r.Get("/welcome", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		csrfToken, _ := params.CSRFManager.EnsureToken(r.Context(), sess)
		var flash *shared.FlashMessage
		if sess != nil {
			flash = sess.PopFlash()
		}
		data := view.TemplateData{
			Title:     "Atrium",
			CSRFToken: csrfToken,
			Flash:     flash,
		}
		if err := params.Templates.Render(w, "pages/landing.html", data); err != nil {
			params.Logger.Error("render landing", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil || sess.User() == "" {
			http.Redirect(w, r, "/welcome", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, "/home", http.StatusSeeOther)
	})

	params.AuthHandler.MountRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(RequireUser)

		r.Get("/home", func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			csrfToken, _ := params.CSRFManager.EnsureToken(r.Context(), sess)
			var flash *shared.FlashMessage
			if sess != nil {
				flash = sess.PopFlash()
			}
			data := view.TemplateData{
				Title:       "Home",
				CSRFToken:   csrfToken,
				Flash:       flash,
				CurrentPath: r.URL.Path,
				IsAdmin:     sess != nil && sess.Get(auth.SessionIsAdminKey) == "true",
			}
			if err := params.Templates.Render(w, "pages/home.html", data); err != nil {
				params.Logger.Error("render home", slog.Any("error", err))
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}
		})

		r.Route("/finance", func(r chi.Router) {
			params.LedgerHandler.MountRoutes(r)
			params.StatementHandler.MountRoutes(r)
			r.Route("/adspend", params.FXHandler.MountRoutes)
		})

		r.Route("/attendance", params.AttendanceHandler.MountRoutes)

		r.Route("/leave", func(r chi.Router) {
			params.LeaveHandler.MountRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)
				params.LeaveHandler.MountAdminRoutes(r)
			})
		})

		r.Route("/projects", params.ProjectsHandler.MountRoutes)
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		// No session or CSRF requirements on assets.
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers so
// browsers keep assets for an hour.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
