package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strconv"  // formats the subject for rate-limit keys
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/spa-booking/internal/model"  // patient identity type
    "github.com/iliyamo/spa-booking/internal/spaapi" // bearer forwarding to the backend
    "github.com/iliyamo/spa-booking/internal/utils"  // token parsing
)

// Context keys set by JWTAuth.
const (
    ctxUserID  = "user_id"
    ctxRole    = "role"
    ctxPatient = "patient"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// issued by the spa backend and injects the caller's identity into the
// request context: the subject as "user_id" (string), the role claim as
// "role" and a model.Patient under "patient".  The raw token is attached
// to the request context so backend calls made on behalf of the patient
// carry the same credentials.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // A valid header starts with "Bearer " followed by the JWT.
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

            claims, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            c.Set(ctxUserID, strconv.FormatInt(claims.Subject, 10))
            c.Set(ctxRole, claims.Role)
            c.Set(ctxPatient, model.Patient{ID: claims.Subject, Email: claims.Email})

            req := c.Request()
            c.SetRequest(req.WithContext(spaapi.WithBearer(req.Context(), raw)))
            return next(c)
        }
    }
}
