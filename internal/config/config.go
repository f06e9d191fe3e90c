package config // package config loads application configuration from environment variables

import (
    "fmt"     // fmt builds the aggregated error for missing variables
    "log"     // log is used to halt execution when configuration is unusable
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "strings" // strings joins the names of missing variables
    "time"    // time parses the HTTP client timeout
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Values that only make sense together are
// grouped into nested structs (backend API, card widget, booking TTLs).
type Config struct {
    Env       string // application environment (e.g. "development", "production")
    Port      string // HTTP port to listen on
    LogLevel  string // zap level: debug, info, warn, error
    DBUser    string // database username
    DBPass    string // database password (optional)
    DBHost    string // database host address
    DBPort    string // database port number
    DBName    string // database name
    JWTSecret string // secret used to verify patient access tokens
    Backend   BackendConfig
    Culqi     CulqiConfig
    Booking   BookingConfig
}

// BackendConfig describes how to reach the spa backend REST API.
type BackendConfig struct {
    BaseURL string        // e.g. https://api.spa.example/api
    Token   string        // optional service token; patient tokens are forwarded when empty
    Timeout time.Duration // per-request timeout applied by the HTTP client
}

// CulqiConfig holds the public settings handed to the browser card widget.
// The secret key never reaches this service; charges run on the backend.
type CulqiConfig struct {
    PublicKey string
    Title     string
    Currency  string
}

// FromEnv reads configuration values from environment variables.  All
// missing required variables are reported together in the returned error.
func FromEnv() (Config, error) {
    var missing []string
    must := func(key string) string {
        v, ok := os.LookupEnv(key)
        if !ok || v == "" {
            missing = append(missing, key)
        }
        return v
    }
    cfg := Config{
        Env:       must("APP_ENV"),                      // environment (development/test/production)
        Port:      must("APP_PORT"),                     // port to bind the HTTP server
        LogLevel:  envStr("LOG_LEVEL", "info"),          // zap log level
        DBUser:    must("DB_USER"),                      // database user
        DBPass:    os.Getenv("DB_PASS"),                 // database password (empty allowed)
        DBHost:    must("DB_HOST"),                      // database host
        DBPort:    must("DB_PORT"),                      // database port
        DBName:    must("DB_NAME"),                      // database name
        JWTSecret: must("JWT_SECRET"),                   // secret used for verifying JWTs
        Backend: BackendConfig{
            BaseURL: strings.TrimRight(must("SPA_API_URL"), "/"),
            Token:   os.Getenv("SPA_API_TOKEN"),
            Timeout: envDur("SPA_API_TIMEOUT", 15*time.Second),
        },
        Culqi: CulqiConfig{
            PublicKey: os.Getenv("CULQI_PUBLIC_KEY"),
            Title:     envStr("CULQI_TITLE", "Spa - pago de cita"),
            Currency:  envStr("CULQI_CURRENCY", "PEN"),
        },
        Booking: LoadBookingConfig(),
    }
    if len(missing) > 0 {
        return Config{}, fmt.Errorf("missing required env vars: %s", strings.Join(missing, ", "))
    }
    return cfg, nil
}

// Load is FromEnv for the program entry point: a configuration error
// logs a fatal message and exits.
func Load() Config {
    cfg, err := FromEnv()
    if err != nil {
        log.Fatal(err)
    }
    return cfg
}

// IsProduction reports whether the service runs with production settings.
func (c Config) IsProduction() bool { return strings.EqualFold(c.Env, "production") }

func envStr(k, d string) string { if v := os.Getenv(k); v != "" { return v }; return d }
func envBool(k string, d bool) bool {
    v := os.Getenv(k)
    if v == "" { return d }
    switch v {
    case "1","true","TRUE","True","yes","YES","on","ON": return true
    case "0","false","FALSE","False","no","NO","off","OFF": return false
    }
    return d
}
func envInt(k string, d int) int {
    v := os.Getenv(k); if v == "" { return d }
    if n, err := strconv.Atoi(v); err == nil { return n }
    return d
}
func envDur(k string, d time.Duration) time.Duration {
    v := os.Getenv(k); if v == "" { return d }
    if dur, err := time.ParseDuration(v); err == nil { return dur }
    return d
}
