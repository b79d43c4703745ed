package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fleetdesk/fleetdesk-backend/api/controllers"
	"github.com/fleetdesk/fleetdesk-backend/api/middleware"
	"github.com/fleetdesk/fleetdesk-backend/internal/assignments"
	"github.com/fleetdesk/fleetdesk-backend/internal/auth"
	"github.com/fleetdesk/fleetdesk-backend/internal/cars"
	"github.com/fleetdesk/fleetdesk-backend/internal/drivers"
	"github.com/fleetdesk/fleetdesk-backend/internal/stats"
	"github.com/fleetdesk/fleetdesk-backend/internal/users"
	"github.com/fleetdesk/fleetdesk-backend/pkg/auth/session"
	"github.com/fleetdesk/fleetdesk-backend/pkg/config"
	"github.com/fleetdesk/fleetdesk-backend/pkg/enums"
	"github.com/fleetdesk/fleetdesk-backend/pkg/logger"
	"github.com/fleetdesk/fleetdesk-backend/pkg/metrics"
	"github.com/fleetdesk/fleetdesk-backend/pkg/redis"
)

// Services bundles everything the HTTP surface depends on.
type Services struct {
	Auth        auth.Service
	Register    auth.RegisterService
	Users       users.Service
	Cars        cars.Service
	Drivers     drivers.Service
	Assignments assignments.Service
	Stats       stats.Service
}

// Probes lists the dependencies the readiness endpoint checks by name.
type Probes map[string]controllers.Pinger

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	probes Probes,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	httpMetrics *metrics.HTTPMetrics,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.CORS),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUserLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterUserLimit,
	)

	requireAuth := middleware.Auth(cfg.JWT, sessions, logg)
	requireAdmin := middleware.RequireRole(enums.RoleAdmin, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, probes))
	})

	if httpMetrics != nil {
		r.Method(http.MethodGet, "/metrics", httpMetrics.Handler())
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
			Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).
			Post("/register", controllers.AuthRegister(svcs.Register, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
		r.With(requireAuth).Post("/logout", controllers.AuthLogout(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(requireAuth)

		r.Get("/ping", controllers.PrivatePing())
		r.Get("/stats", controllers.Stats(svcs.Stats, logg))

		r.Route("/users", func(r chi.Router) {
			r.Use(requireAdmin)
			r.Get("/", controllers.ListUsers(svcs.Users, logg))
			r.Post("/", controllers.CreateUser(svcs.Users, logg))
			r.Delete("/{id}", controllers.DeleteUser(svcs.Users, logg))
		})

		r.Route("/cars", func(r chi.Router) {
			r.Get("/", controllers.ListCars(svcs.Cars, logg))
			r.With(requireAdmin).Post("/", controllers.CreateCar(svcs.Cars, logg))
			r.With(requireAdmin).Delete("/{id}", controllers.DeleteCar(svcs.Cars, logg))
		})

		r.Route("/drivers", func(r chi.Router) {
			r.Get("/", controllers.ListDrivers(svcs.Drivers, logg))
			r.With(requireAdmin).Post("/", controllers.CreateDriver(svcs.Drivers, logg))
			r.With(requireAdmin).Delete("/{id}", controllers.DeleteDriver(svcs.Drivers, logg))
		})

		r.Route("/assignments", func(r chi.Router) {
			r.Get("/", controllers.ListOpenAssignments(svcs.Assignments, logg))
			r.Post("/", controllers.CreateAssignment(svcs.Assignments, logg))
			r.Post("/unassign", controllers.UnassignByBody(svcs.Assignments, logg))
			r.Patch("/{id}/unassign", controllers.UnassignByID(svcs.Assignments, logg))
			r.Get("/history/car/{id}", controllers.AssignmentHistoryByCar(svcs.Assignments, logg))
			r.Get("/history/driver/{id}", controllers.AssignmentHistoryByDriver(svcs.Assignments, logg))
		})
	})

	return r
}
