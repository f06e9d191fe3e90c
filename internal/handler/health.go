package handler // declare the package name; contains HTTP handlers

import (
    "context"  // context bounds the dependency checks
    "net/http" // net/http provides status codes and response helpers
    "time"     // time sets the readiness timeout

    "github.com/labstack/echo/v4" // echo is the web framework used for this project
)

// Health is a simple health-check endpoint used by load balancers and
// monitoring systems to verify that the service is running.  It returns
// a plain text "ok" message with an HTTP 200 status code.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}

// Pinger is implemented by the dependencies a readiness probe checks
// (the Redis client wrapper and *sql.DB both qualify through adapters).
type Pinger interface {
    Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// Ready returns a handler that reports 503 when any named dependency fails
// to answer within two seconds.
func Ready(deps map[string]Pinger) echo.HandlerFunc {
    return func(c echo.Context) error {
        ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
        defer cancel()
        status := http.StatusOK
        out := make(map[string]string, len(deps))
        for name, p := range deps {
            if err := p.Ping(ctx); err != nil {
                status = http.StatusServiceUnavailable
                out[name] = err.Error()
                continue
            }
            out[name] = "ok"
        }
        return c.JSON(status, out)
    }
}
