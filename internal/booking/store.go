package booking

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "time"

    "github.com/google/uuid"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/spa-booking/internal/model"
)

// Store keeps drafts, payment intents and short-lived locks in Redis.
type Store struct {
    rdb       *redis.Client
    prefix    string
    draftTTL  time.Duration
    intentTTL time.Duration
}

// NewStore constructs a Store.  rdb must be non-nil.
func NewStore(rdb *redis.Client, prefix string, draftTTL, intentTTL time.Duration) *Store {
    if rdb == nil {
        panic("booking: nil redis client passed to NewStore")
    }
    if prefix == "" {
        prefix = "spa"
    }
    return &Store{rdb: rdb, prefix: prefix, draftTTL: draftTTL, intentTTL: intentTTL}
}

func (s *Store) draftKey(patientID int64) string {
    return fmt.Sprintf("%s:draft:%d", s.prefix, patientID)
}

func (s *Store) intentKey(patientID, citaID int64) string {
    return fmt.Sprintf("%s:intent:%d:%d", s.prefix, patientID, citaID)
}

// LoadDraft returns the patient's draft, or an empty one when none exists.
func (s *Store) LoadDraft(ctx context.Context, patientID int64) (Draft, error) {
    var d Draft
    bs, err := s.rdb.Get(ctx, s.draftKey(patientID)).Bytes()
    if errors.Is(err, redis.Nil) {
        return d, nil
    }
    if err != nil {
        return d, fmt.Errorf("load draft: %w", err)
    }
    if err := json.Unmarshal(bs, &d); err != nil {
        return Draft{}, fmt.Errorf("decode draft: %w", err)
    }
    return d, nil
}

// SaveDraft stores the draft and refreshes its TTL.
func (s *Store) SaveDraft(ctx context.Context, patientID int64, d Draft) error {
    bs, err := json.Marshal(d)
    if err != nil {
        return fmt.Errorf("encode draft: %w", err)
    }
    return s.rdb.Set(ctx, s.draftKey(patientID), bs, s.draftTTL).Err()
}

// DeleteDraft discards the draft.
func (s *Store) DeleteDraft(ctx context.Context, patientID int64) error {
    return s.rdb.Del(ctx, s.draftKey(patientID)).Err()
}

// SaveIntent stores the pending payment of an appointment.
func (s *Store) SaveIntent(ctx context.Context, patientID int64, in model.PaymentIntent) error {
    bs, err := json.Marshal(intentRecord{CitaID: in.CitaID, Monto: int64(in.Monto), IdempotencyKey: in.IdempotencyKey})
    if err != nil {
        return fmt.Errorf("encode intent: %w", err)
    }
    return s.rdb.Set(ctx, s.intentKey(patientID, in.CitaID), bs, s.intentTTL).Err()
}

// LoadIntent returns the pending payment of an appointment owned by the
// patient, or ErrNoPendingPayment.
func (s *Store) LoadIntent(ctx context.Context, patientID, citaID int64) (model.PaymentIntent, error) {
    bs, err := s.rdb.Get(ctx, s.intentKey(patientID, citaID)).Bytes()
    if errors.Is(err, redis.Nil) {
        return model.PaymentIntent{}, ErrNoPendingPayment
    }
    if err != nil {
        return model.PaymentIntent{}, fmt.Errorf("load intent: %w", err)
    }
    var rec intentRecord
    if err := json.Unmarshal(bs, &rec); err != nil {
        return model.PaymentIntent{}, fmt.Errorf("decode intent: %w", err)
    }
    return model.PaymentIntent{CitaID: rec.CitaID, Monto: model.Centimos(rec.Monto), IdempotencyKey: rec.IdempotencyKey}, nil
}

// DeleteIntent removes a pending payment once it is settled.
func (s *Store) DeleteIntent(ctx context.Context, patientID, citaID int64) error {
    return s.rdb.Del(ctx, s.intentKey(patientID, citaID)).Err()
}

// intentRecord stores the amount as raw céntimos; model.Centimos renders
// soles in JSON.
type intentRecord struct {
    CitaID         int64  `json:"cita_id"`
    Monto          int64  `json:"monto_centimos"`
    IdempotencyKey string `json:"idempotency_key"`
}

// unlockScript deletes the lock only while it still holds our token.
var unlockScript = redis.NewScript(`
    if redis.call('GET', KEYS[1]) == ARGV[1] then
        return redis.call('DEL', KEYS[1])
    end
    return 0
`)

// TryLock takes a best-effort lock on name for ttl.  It returns the token
// needed to release it, or ok=false when someone else holds it.
func (s *Store) TryLock(ctx context.Context, name string, ttl time.Duration) (token string, ok bool, err error) {
    token = uuid.NewString()
    ok, err = s.rdb.SetNX(ctx, s.prefix+":lock:"+name, token, ttl).Result()
    if err != nil {
        return "", false, fmt.Errorf("acquire lock %s: %w", name, err)
    }
    if !ok {
        return "", false, nil
    }
    return token, true, nil
}

// Unlock releases a lock taken with TryLock.  A lock that already expired
// or was taken by someone else is left alone.
func (s *Store) Unlock(ctx context.Context, name, token string) error {
    return unlockScript.Run(ctx, s.rdb, []string{s.prefix + ":lock:" + name}, token).Err()
}
