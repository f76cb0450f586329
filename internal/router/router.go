package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cyberkid042/auth-identity-service/internal/config"
	"github.com/cyberkid042/auth-identity-service/internal/handler"
	"github.com/cyberkid042/auth-identity-service/internal/metrics"
	"github.com/cyberkid042/auth-identity-service/internal/middleware"
	"github.com/cyberkid042/auth-identity-service/internal/model"
)

type Handlers struct {
	Auth   *handler.AuthHandler
	User   *handler.UserHandler
	Admin  *handler.AdminHandler
	Health *handler.HealthHandler
}

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	h Handlers,
	limiter middleware.RateLimiter,
	m *metrics.Metrics,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.ClientIP(middleware.NewClientIPResolver(cfg.TrustedProxies)))
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics(m))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RateLimit(limiter))

	r.Get("/health", h.Health.Health)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Group(func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", h.Auth.Register)
			auth.Post("/login", h.Auth.Login)
			auth.Post("/refresh", h.Auth.Refresh)
			auth.With(authMiddleware.RequireAuth).Get("/profile", h.Auth.Profile)
		})

		api.Group(func(admin chi.Router) {
			admin.Use(authMiddleware.RequireAuth, authMiddleware.RequireRoles(model.RoleAdmin))

			admin.Get("/admin/dashboard", h.Admin.Dashboard)
			admin.Get("/users", h.User.List)
			admin.Get("/users/{id}", h.User.Get)
			admin.Put("/users/{id}", h.User.Update)
			admin.Delete("/users/{id}", h.User.Delete)
		})
	})

	return r
}
