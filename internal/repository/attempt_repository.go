package repository

import (
    "context"
    "database/sql"
    "strings"
    "time"
)

// AttemptRepo records every appointment submission and how far it got.
// The backend offers no compensating delete when detail creation fails
// part way, so this ledger is where partially created appointments become
// visible.  All timestamps are stored in UTC.
type AttemptRepo struct {
    db *sql.DB
}

// NewAttemptRepo returns a new AttemptRepo bound to the given database.
func NewAttemptRepo(db *sql.DB) *AttemptRepo { return &AttemptRepo{db: db} }

// AttemptRecord mirrors the booking_attempts table.
//
// Fields:
//  ID              – primary key.
//  PatientID       – backend id of the patient who submitted.
//  CitaID          – backend appointment id once POST /citas succeeded.
//  State           – booking state name (SUBMITTING, DETAILS_PARTIAL...).
//  DetailsExpected – number of services selected.
//  DetailsCreated  – number of details the backend accepted.
//  MontoCentimos   – cash amount left to pay.
//  PaymentMethod   – settlement method once one was attempted.
//  LastError       – message of the last failure, if any.
//  IdempotencyKey  – key sent with every settlement call of the attempt.
type AttemptRecord struct {
    ID              uint64
    PatientID       int64
    CitaID          *int64
    State           string
    DetailsExpected int
    DetailsCreated  int
    MontoCentimos   int64
    PaymentMethod   *string
    LastError       *string
    IdempotencyKey  string
    CreatedAt       time.Time
    UpdatedAt       time.Time
}

// AttemptUpdate lists the columns a state transition may change.  Nil
// fields are left untouched; State is always written.
type AttemptUpdate struct {
    State          string
    CitaID         *int64
    DetailsCreated *int
    MontoCentimos  *int64
    PaymentMethod  *string
    LastError      *string
}

// incompleteStates are the states that leave work for the front desk.
var incompleteStates = []string{"DETAILS_PARTIAL", "AWAITING_PAYMENT_METHOD", "CARD_CHARGE_PENDING", "CARD_DECLINED"}

const attemptColumns = `id, patient_id, cita_id, state, details_expected, details_created, monto_centimos, payment_method, last_error, idempotency_key, created_at, updated_at`

// Create inserts a new attempt and populates its generated ID and timestamps.
func (r *AttemptRepo) Create(ctx context.Context, rec *AttemptRecord) error {
    now := time.Now().UTC()
    const q = `INSERT INTO booking_attempts (patient_id, cita_id, state, details_expected, details_created, monto_centimos, payment_method, last_error, idempotency_key, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q,
        rec.PatientID, nullInt(rec.CitaID), rec.State, rec.DetailsExpected, rec.DetailsCreated,
        rec.MontoCentimos, nullStr(rec.PaymentMethod), nullStr(rec.LastError), rec.IdempotencyKey, now, now,
    )
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    rec.ID = uint64(id)
    rec.CreatedAt, rec.UpdatedAt = now, now
    return nil
}

// Update applies a transition to the attempt with the given ID.
func (r *AttemptRepo) Update(ctx context.Context, id uint64, upd AttemptUpdate) error {
    set, args := buildSet(upd)
    q := `UPDATE booking_attempts SET ` + set + ` WHERE id = ?`
    args = append(args, id)
    return r.exec(ctx, q, args...)
}

// UpdateByCita applies a transition to the most recent attempt that
// created the given appointment.  Settlement calls only know the cita id.
func (r *AttemptRepo) UpdateByCita(ctx context.Context, citaID int64, upd AttemptUpdate) error {
    set, args := buildSet(upd)
    q := `UPDATE booking_attempts SET ` + set + ` WHERE cita_id = ? ORDER BY id DESC LIMIT 1`
    args = append(args, citaID)
    return r.exec(ctx, q, args...)
}

// ListByPatient returns the newest attempts of a patient, newest first.
func (r *AttemptRepo) ListByPatient(ctx context.Context, patientID int64, limit int) ([]AttemptRecord, error) {
    q := `SELECT ` + attemptColumns + ` FROM booking_attempts WHERE patient_id = ? ORDER BY id DESC LIMIT ?`
    return r.query(ctx, q, patientID, clampLimit(limit))
}

// ListIncomplete returns attempts whose appointment exists but still lacks
// details or a settled payment, newest first.
func (r *AttemptRepo) ListIncomplete(ctx context.Context, limit int) ([]AttemptRecord, error) {
    placeholders := strings.TrimSuffix(strings.Repeat("?,", len(incompleteStates)), ",")
    q := `SELECT ` + attemptColumns + ` FROM booking_attempts WHERE cita_id IS NOT NULL AND state IN (` + placeholders + `) ORDER BY id DESC LIMIT ?`
    args := make([]interface{}, 0, len(incompleteStates)+1)
    for _, s := range incompleteStates {
        args = append(args, s)
    }
    args = append(args, clampLimit(limit))
    return r.query(ctx, q, args...)
}

func (r *AttemptRepo) exec(ctx context.Context, q string, args ...interface{}) error {
    res, err := r.db.ExecContext(ctx, q, args...)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrAttemptNotFound
    }
    return nil
}

func (r *AttemptRepo) query(ctx context.Context, q string, args ...interface{}) ([]AttemptRecord, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []AttemptRecord
    for rows.Next() {
        var rec AttemptRecord
        var cita sql.NullInt64
        var method, lastErr sql.NullString
        if err := rows.Scan(
            &rec.ID, &rec.PatientID, &cita, &rec.State, &rec.DetailsExpected, &rec.DetailsCreated,
            &rec.MontoCentimos, &method, &lastErr, &rec.IdempotencyKey, &rec.CreatedAt, &rec.UpdatedAt,
        ); err != nil {
            return nil, err
        }
        if cita.Valid {
            v := cita.Int64
            rec.CitaID = &v
        }
        if method.Valid {
            v := method.String
            rec.PaymentMethod = &v
        }
        if lastErr.Valid {
            v := lastErr.String
            rec.LastError = &v
        }
        out = append(out, rec)
    }
    return out, rows.Err()
}

// buildSet renders the SET clause for an update.  Column order is fixed so
// the generated SQL is stable.
func buildSet(upd AttemptUpdate) (string, []interface{}) {
    cols := []string{"state = ?"}
    args := []interface{}{upd.State}
    if upd.CitaID != nil {
        cols = append(cols, "cita_id = ?")
        args = append(args, *upd.CitaID)
    }
    if upd.DetailsCreated != nil {
        cols = append(cols, "details_created = ?")
        args = append(args, *upd.DetailsCreated)
    }
    if upd.MontoCentimos != nil {
        cols = append(cols, "monto_centimos = ?")
        args = append(args, *upd.MontoCentimos)
    }
    if upd.PaymentMethod != nil {
        cols = append(cols, "payment_method = ?")
        args = append(args, *upd.PaymentMethod)
    }
    if upd.LastError != nil {
        cols = append(cols, "last_error = ?")
        args = append(args, *upd.LastError)
    }
    cols = append(cols, "updated_at = ?")
    args = append(args, time.Now().UTC())
    return strings.Join(cols, ", "), args
}

func clampLimit(limit int) int {
    if limit <= 0 || limit > 200 {
        return 50
    }
    return limit
}

func nullInt(v *int64) interface{} {
    if v == nil {
        return nil
    }
    return *v
}

func nullStr(v *string) interface{} {
    if v == nil {
        return nil
    }
    return *v
}
