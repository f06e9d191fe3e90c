package config

import "time"

// BookingConfig controls the lifetime of the ephemeral state kept in Redis
// while a patient builds and pays for an appointment.
type BookingConfig struct {
    DraftTTL      time.Duration // selection drafts
    IntentTTL     time.Duration // pending payment intents
    SubmitLockTTL time.Duration // re-entrant submission guard
    SettleLockTTL time.Duration // double-tap guard on settlement calls
    CatalogTTL    time.Duration // read-through cache of specialties/collaborators/services
    Prefix        string        // key namespace
}

// LoadBookingConfig reads BOOKING_* variables, falling back to defaults.
func LoadBookingConfig() BookingConfig {
    cfg := BookingConfig{
        DraftTTL:      envDur("BOOKING_DRAFT_TTL", 2*time.Hour),
        IntentTTL:     envDur("BOOKING_INTENT_TTL", 24*time.Hour),
        SubmitLockTTL: envDur("BOOKING_SUBMIT_LOCK_TTL", time.Minute),
        SettleLockTTL: envDur("BOOKING_SETTLE_LOCK_TTL", 45*time.Second),
        CatalogTTL:    envDur("BOOKING_CATALOG_TTL", 5*time.Minute),
        Prefix:        envStr("BOOKING_PREFIX", "spa"),
    }
    if cfg.SubmitLockTTL <= 0 { cfg.SubmitLockTTL = time.Minute }
    if cfg.SettleLockTTL <= 0 { cfg.SettleLockTTL = 45 * time.Second }
    return cfg
}
