package app

import (
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/officehub/officehub/internal/attendance"
	"github.com/officehub/officehub/internal/audit"
	"github.com/officehub/officehub/internal/auth"
	"github.com/officehub/officehub/internal/clients"
	"github.com/officehub/officehub/internal/dashboard"
	"github.com/officehub/officehub/internal/expenses"
	"github.com/officehub/officehub/internal/leaves"
	"github.com/officehub/officehub/internal/observability"
	"github.com/officehub/officehub/internal/platform/db"
	"github.com/officehub/officehub/internal/platform/httpx"
	"github.com/officehub/officehub/internal/products"
	"github.com/officehub/officehub/internal/rbac"
	"github.com/officehub/officehub/internal/shared"
	"github.com/officehub/officehub/internal/tasks"
	"github.com/officehub/officehub/internal/users"
	"github.com/officehub/officehub/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	Health         db.Health
	RBACMiddleware rbac.Middleware
	Metrics        *observability.Metrics
	// Accounts re-validates session principals; nil skips the check.
	Accounts auth.AccountStore

	AuthHandler        *auth.Handler
	PermissionsHandler *rbac.PermissionsHandler
	DashboardHandler   *dashboard.Handler
	StaffHandler       *users.Handler
	TasksHandler       *tasks.Handler
	AttendanceHandler  *attendance.Handler
	LeavesHandler      *leaves.Handler
	ExpensesHandler    *expenses.Handler
	ClientsHandler     *clients.Handler
	ProductsHandler    *products.Handler
	AuditHandler       *audit.Handler
	JobHandler         *jobs.Handler

	// Static overrides Config.StaticDir, mainly for tests.
	Static fs.FS
}

// offlineRoutes keep working when the store probe failed.
var offlineRoutes = []string{"/api/login", "/api/logout", "/api/me", "/api/permissions"}

// NewRouter constructs the chi.Router with OfficeHub defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok", "store": params.Health.Status()})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(StoreGuard(params.Health, offlineRoutes...))
		r.Use(AccountCheck(params.Accounts, params.Health, params.SessionManager, params.Logger))

		if params.AuthHandler != nil {
			params.AuthHandler.MountRoutes(r)
		}
		if params.PermissionsHandler != nil {
			params.PermissionsHandler.MountRoutes(r)
		}

		r.Group(func(r chi.Router) {
			r.Use(params.RBACMiddleware.RequireAuth)
			if params.DashboardHandler != nil {
				params.DashboardHandler.MountRoutes(r)
			}
			if params.StaffHandler != nil {
				params.StaffHandler.MountRoutes(r)
			}
			if params.TasksHandler != nil {
				params.TasksHandler.MountRoutes(r)
			}
			if params.AttendanceHandler != nil {
				params.AttendanceHandler.MountRoutes(r)
			}
			if params.LeavesHandler != nil {
				params.LeavesHandler.MountRoutes(r)
			}
			if params.ExpensesHandler != nil {
				params.ExpensesHandler.MountRoutes(r)
			}
			if params.ClientsHandler != nil {
				params.ClientsHandler.MountRoutes(r)
			}
			if params.ProductsHandler != nil {
				params.ProductsHandler.MountRoutes(r)
			}
			if params.AuditHandler != nil {
				params.AuditHandler.MountRoutes(r)
			}
			if params.JobHandler != nil {
				r.Route("/jobs", func(r chi.Router) {
					r.Use(params.RBACMiddleware.RequireAny(shared.PermJobsView))
					params.JobHandler.MountRoutes(r)
				})
			}
		})

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			httpx.Fail(w, http.StatusNotFound, "Route not found")
		})
	})

	static := params.Static
	if static == nil && params.Config != nil && params.Config.StaticDir != "" {
		static = os.DirFS(params.Config.StaticDir)
	}
	if static != nil {
		r.NotFound(spaHandler(static))
	}

	return r
}

// spaHandler serves built client assets and falls back to index.html so the
// client-side router can resolve deep links.
func spaHandler(static fs.FS) http.HandlerFunc {
	files := http.FileServer(http.FS(static))
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			httpx.Fail(w, http.StatusNotFound, "Route not found")
			return
		}
		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if name != "" {
			if info, err := fs.Stat(static, name); err == nil && !info.IsDir() {
				files.ServeHTTP(w, r)
				return
			}
		}
		index, err := fs.ReadFile(static, "index.html")
		if err != nil {
			httpx.Fail(w, http.StatusNotFound, "Route not found")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(index)
	}
}
