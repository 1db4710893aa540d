package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/ewaste-management/internal/auth"
	"github.com/frahmantamala/ewaste-management/internal/autofill"
	"github.com/frahmantamala/ewaste-management/internal/batch"
	coreuser "github.com/frahmantamala/ewaste-management/internal/core/user"
	"github.com/frahmantamala/ewaste-management/internal/transport/middleware"
	"github.com/frahmantamala/ewaste-management/internal/transport/swagger"
	"github.com/frahmantamala/ewaste-management/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups everything the router mounts. Nil handlers leave their
// routes unregistered.
type Handlers struct {
	Auth     *auth.Handler
	User     *user.Handler
	Batch    *batch.Handler
	Autofill *autofill.Handler
	RBAC     *auth.RBACAuthorization
	Health   *HealthHandler
}

type Options struct {
	AllowedOrigins []string
	MetricsPath    string
	SpecPath       string
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options, logger *slog.Logger) {
	if opts.SpecPath == "" {
		opts.SpecPath = swagger.DefaultSpecPath
	}
	if h.Health == nil {
		h.Health = NewHealthHandler(nil)
	}

	router.NotFound(NotFound)
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	if opts.MetricsPath != "" {
		router.Handle(opts.MetricsPath, promhttp.Handler())
	}

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", swagger.SpecHandler(opts.SpecPath))
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health.Health)
		r.Get("/ping", h.Health.Ping)

		if h.Auth == nil {
			return
		}

		r.Route("/auth", func(sr chi.Router) {
			if h.User != nil {
				sr.Post("/register", h.User.Register)
			}
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Post("/logout", h.Auth.Logout)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			pr.Use(middleware.UserContext)

			if h.User != nil {
				registerUserRoutes(pr, h)
			}
			if h.Batch != nil {
				registerBatchRoutes(pr, h)
			}
			if h.Autofill != nil {
				pr.With(middleware.RequireAdmin()).Post("/autocomplete", h.Autofill.Suggest)
			}
		})
	})
}

func registerUserRoutes(r chi.Router, h Handlers) {
	r.Route("/users", func(ur chi.Router) {
		ur.Get("/me", h.User.GetCurrentUser)
		ur.Put("/me", h.User.UpdateProfile)
		ur.Put("/me/password", h.User.ChangePassword)

		ur.Group(func(mr chi.Router) {
			if h.RBAC != nil {
				mr.Use(h.RBAC.RequireManageUsers())
			}
			mr.Patch("/{id}/deactivate", h.User.Deactivate)
		})
	})
}

func registerBatchRoutes(r chi.Router, h Handlers) {
	r.Route("/batches", func(br chi.Router) {
		br.Get("/", h.Batch.ListBatches)
		// stats must be registered before /{id}
		br.With(middleware.RequireAdmin()).Get("/stats", h.Batch.GetStats)
		br.Get("/{id}", h.Batch.GetBatch)

		br.With(middleware.RequireRoles(coreuser.RolePartner)).Post("/", h.Batch.CreateBatch)
		br.With(middleware.RequireRoles(coreuser.RoleSuperAdmin)).Delete("/{id}", h.Batch.DeleteBatch)

		if h.RBAC == nil {
			br.Post("/{id}/items", h.Batch.AddItems)
			br.Put("/{id}/status", h.Batch.UpdateStatus)
			br.Patch("/{id}/schedule", h.Batch.SchedulePickup)
			return
		}
		br.With(h.RBAC.RequireManageItems()).Post("/{id}/items", h.Batch.AddItems)
		br.With(h.RBAC.RequireManageBatches()).Put("/{id}/status", h.Batch.UpdateStatus)
		br.With(h.RBAC.RequireSchedulePickups()).Patch("/{id}/schedule", h.Batch.SchedulePickup)
	})
}

// NotFound answers unknown routes with the standard error envelope.
func NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"error":{"type":"NOT_FOUND","code":"ROUTE_NOT_FOUND","message":"Route not found"}}`))
}
