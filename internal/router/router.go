package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/spa-booking/internal/handler"    // handlers implementing each endpoint
	"github.com/iliyamo/spa-booking/internal/middleware" // JWT authentication and role enforcement
	"github.com/iliyamo/spa-booking/internal/utils"      // role names
)

// RegisterRoutes registers routes that do not require authentication:
// the liveness probe and, when ready is non-nil, the readiness probe.
func RegisterRoutes(e *echo.Echo, ready echo.HandlerFunc) {
	e.GET("/healthz", handler.Health)
	if ready != nil {
		e.GET("/readyz", ready)
	}
}

// RegisterCatalog registers the public catalog endpoints.  cache wraps
// each route with the Redis response cache.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/especialidades", cache)
	g.GET("", h.ListEspecialidades)
	g.GET("/:id/colaboradores", h.ListColaboradores)
	g.GET("/:id/servicios", h.ListServicios)
}

// RegisterPatient registers the booking flow under /v1.  All routes
// require a valid JWT and the PACIENTE role; limiter runs after
// authentication so buckets are keyed by patient.
func RegisterPatient(e *echo.Echo, h *handler.BookingHandler, a *handler.AttemptHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(utils.RolePaciente),
		limiter,
	)
	g.GET("/beneficios", h.ListBeneficios)

	g.GET("/borrador", h.GetDraft)
	g.PUT("/borrador", h.UpdateDraft)
	g.DELETE("/borrador", h.ResetDraft)
	g.POST("/borrador/servicios/:id", h.TapService)
	g.POST("/borrador/servicios/:id/membresia", h.ToggleMembership)

	g.POST("/citas", h.Submit)
	g.GET("/citas/:id/pago", h.Pending)
	g.GET("/citas/:id/checkout", h.Checkout)
	g.POST("/citas/:id/pagos/:metodo", h.Settle)

	g.GET("/mis-intentos", a.MyAttempts)
}

// RegisterAdmin registers the front-desk endpoints.  They require the
// ADMINISTRADOR role.
func RegisterAdmin(e *echo.Echo, a *handler.AttemptHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(utils.RoleAdministrador),
	)
	g.GET("/intentos-incompletos", a.Incomplete)
}
