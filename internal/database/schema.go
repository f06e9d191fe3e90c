package database

import (
	"context"
	"database/sql"
)

// attemptsDDL creates the booking attempts ledger.  cita_id is nullable
// because the row is written before POST /citas is called.
const attemptsDDL = `CREATE TABLE IF NOT EXISTS booking_attempts (
	id               BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
	patient_id       BIGINT NOT NULL,
	cita_id          BIGINT NULL,
	state            VARCHAR(32) NOT NULL,
	details_expected INT NOT NULL DEFAULT 0,
	details_created  INT NOT NULL DEFAULT 0,
	monto_centimos   BIGINT NOT NULL DEFAULT 0,
	payment_method   VARCHAR(16) NULL,
	last_error       VARCHAR(1024) NULL,
	idempotency_key  CHAR(36) NOT NULL,
	created_at       DATETIME NOT NULL,
	updated_at       DATETIME NOT NULL,
	KEY idx_attempts_patient (patient_id, id),
	KEY idx_attempts_cita (cita_id, id),
	KEY idx_attempts_state (state)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// EnsureSchema creates the tables this service owns when they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, attemptsDDL)
	return err
}
