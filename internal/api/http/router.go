package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/school-service/internal/api/http/handlers"
	"github.com/spec-kit/school-service/internal/auth"
	"github.com/spec-kit/school-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Dashboards     *handlers.DashboardHandler
	Metrics        *handlers.MetricsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Every route declares its access requirement.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	gate := cfg.AuthMiddleware

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/login", gate.Protect(auth.Public()), cfg.Auth.Login)
	authGroup.Post("/register", gate.Protect(auth.Public()), cfg.Auth.Register)
	authGroup.Get("/profile", gate.Protect(auth.Authenticated()), cfg.Auth.Profile)
	authGroup.Post("/change-password", gate.Protect(auth.Authenticated()), cfg.Auth.ChangePassword)

	api.Post("/user/change-password", gate.Protect(auth.Authenticated()), cfg.Auth.ChangePassword)
	api.Get("/role", gate.Protect(auth.Public()), cfg.Auth.Roles)

	studentOnly := gate.Protect(auth.RoleIn(domain.RoleStudent))
	student := api.Group("/student")
	student.Get("/dashboard", studentOnly, cfg.Dashboards.StudentDashboard)
	student.Get("/courses", studentOnly, cfg.Dashboards.StudentCourses)
	student.Get("/assignments", studentOnly, cfg.Dashboards.StudentAssignments)

	// the teacher dashboard lives under /admin
	teacherOnly := gate.Protect(auth.RoleIn(domain.RoleTeacher))
	teacher := api.Group("/admin")
	teacher.Get("/dashboard", teacherOnly, cfg.Dashboards.TeacherDashboard)
	teacher.Get("/students", teacherOnly, cfg.Dashboards.Students)

	api.Get("/metrics", gate.Protect(auth.RoleIn(domain.RoleAdmin)), cfg.Metrics.Show)
}
