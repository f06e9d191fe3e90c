package middleware

import (
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/spa-booking/internal/model"
)

// PatientFrom returns the identity JWTAuth stored in the context.  ok is
// false on routes that did not pass through JWTAuth.
func PatientFrom(c echo.Context) (model.Patient, bool) {
    p, ok := c.Get(ctxPatient).(model.Patient)
    return p, ok
}

// userID returns the authenticated subject, or "anon" for public routes.
func userID(c echo.Context) string {
    if s, ok := c.Get(ctxUserID).(string); ok && s != "" {
        return s
    }
    return "anon"
}
