// Package spaapi is the REST client for the spa backend.  The backend owns
// appointments, subscriptions, benefit ledgers and payments; this package
// only speaks its contracts.
package spaapi

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "strings"
    "time"

    "go.uber.org/zap"

    "github.com/iliyamo/spa-booking/internal/config"
    "github.com/iliyamo/spa-booking/internal/metrics"
)

// IdempotencyHeader carries the client generated key that lets the backend
// drop duplicate settlement requests.
const IdempotencyHeader = "Idempotency-Key"

// maxErrorBody bounds how much of an error response is read for the message.
const maxErrorBody = 64 << 10

type bearerKey struct{}

// WithBearer attaches the caller's access token to ctx.  It is forwarded to
// the backend when the client has no service token of its own.
func WithBearer(ctx context.Context, token string) context.Context {
    return context.WithValue(ctx, bearerKey{}, token)
}

func bearerFrom(ctx context.Context) string {
    s, _ := ctx.Value(bearerKey{}).(string)
    return s
}

// Client calls the spa backend over HTTP.  It is safe for concurrent use.
type Client struct {
    baseURL    string
    token      string
    httpClient *http.Client
    logger     *zap.Logger
    metrics    *metrics.BookingMetrics
}

// New builds a Client from the backend configuration.  A nil logger is
// replaced with a no-op logger; metrics may be nil.
func New(cfg config.BackendConfig, logger *zap.Logger, m *metrics.BookingMetrics) *Client {
    if logger == nil {
        logger = zap.NewNop()
    }
    timeout := cfg.Timeout
    if timeout <= 0 {
        timeout = 15 * time.Second
    }
    return &Client{
        baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
        token:      cfg.Token,
        httpClient: &http.Client{Timeout: timeout},
        logger:     logger,
        metrics:    m,
    }
}

// WithHTTPClient replaces the underlying HTTP client (tests, custom transports).
func (c *Client) WithHTTPClient(h *http.Client) *Client {
    if h != nil {
        c.httpClient = h
    }
    return c
}

// request describes one backend call.
type request struct {
    op          string     // operation name used in logs and metrics
    method      string
    path        string
    query       url.Values
    body        any
    idempotency string
}

// do performs the call and decodes a 2xx body into out (when non-nil).
// Bodies wrapped in a {"data": ...} envelope are unwrapped.
func (c *Client) do(ctx context.Context, r request, out any) error {
    start := time.Now()
    err := c.roundTrip(ctx, r, out)
    status := "ok"
    if err != nil {
        status = "error"
        c.logger.Warn("spaapi."+r.op+" failed",
            zap.String("method", r.method),
            zap.String("path", r.path),
            zap.Error(err),
        )
    }
    c.metrics.ObserveBackend(r.op, status, time.Since(start))
    return err
}

func (c *Client) roundTrip(ctx context.Context, r request, out any) error {
    u := c.baseURL + r.path
    if len(r.query) > 0 {
        u += "?" + r.query.Encode()
    }
    var body io.Reader
    if r.body != nil {
        b, err := json.Marshal(r.body)
        if err != nil {
            return fmt.Errorf("%s: marshal request: %w", r.op, err)
        }
        body = bytes.NewReader(b)
    }
    req, err := http.NewRequestWithContext(ctx, r.method, u, body)
    if err != nil {
        return fmt.Errorf("%s: build request: %w", r.op, err)
    }
    req.Header.Set("Accept", "application/json")
    if r.body != nil {
        req.Header.Set("Content-Type", "application/json")
    }
    if tok := c.token; tok != "" {
        req.Header.Set("Authorization", "Bearer "+tok)
    } else if tok := bearerFrom(ctx); tok != "" {
        req.Header.Set("Authorization", "Bearer "+tok)
    }
    if r.idempotency != "" {
        req.Header.Set(IdempotencyHeader, r.idempotency)
    }

    resp, err := c.httpClient.Do(req)
    if err != nil {
        return fmt.Errorf("%s: %w", r.op, err)
    }
    defer resp.Body.Close()

    if resp.StatusCode < 200 || resp.StatusCode > 299 {
        raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
        return &APIError{Operation: r.op, Status: resp.StatusCode, Message: errorMessage(raw, resp.Status)}
    }
    if out == nil {
        _, _ = io.Copy(io.Discard, resp.Body)
        return nil
    }
    raw, err := io.ReadAll(resp.Body)
    if err != nil {
        return fmt.Errorf("%s: read response: %w", r.op, err)
    }
    if err := decodeEnvelope(raw, out); err != nil {
        return fmt.Errorf("%s: decode response: %w", r.op, err)
    }
    return nil
}

// decodeEnvelope unmarshals raw into out, unwrapping {"data": ...} when the
// body is an object carrying a data key.
func decodeEnvelope(raw []byte, out any) error {
    trimmed := bytes.TrimSpace(raw)
    if len(trimmed) == 0 {
        return nil
    }
    if trimmed[0] == '{' {
        var env map[string]json.RawMessage
        if err := json.Unmarshal(trimmed, &env); err == nil {
            if data, ok := env["data"]; ok {
                return json.Unmarshal(data, out)
            }
        }
    }
    return json.Unmarshal(trimmed, out)
}

// errorMessage extracts a human readable message from an error body.  The
// backend replies with {"message": ...}, {"mensaje": ...} or {"error": ...};
// NestJS style validation errors put a list under "message".
func errorMessage(raw []byte, fallback string) string {
    var body map[string]json.RawMessage
    if err := json.Unmarshal(raw, &body); err == nil {
        for _, k := range []string{"message", "mensaje", "error"} {
            v, ok := body[k]
            if !ok {
                continue
            }
            var s string
            if json.Unmarshal(v, &s) == nil && s != "" {
                return s
            }
            var list []string
            if json.Unmarshal(v, &list) == nil && len(list) > 0 {
                return strings.Join(list, "; ")
            }
        }
    }
    if s := strings.TrimSpace(string(raw)); s != "" && len(s) < 200 {
        return s
    }
    return fallback
}
