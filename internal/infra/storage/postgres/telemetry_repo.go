package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/adreach/adsdk/internal/core/domain"
)

// TelemetryRepo persists ingested telemetry batches.
type TelemetryRepo struct {
	db *DB
}

// NewTelemetryRepo creates a new telemetry repository.
func NewTelemetryRepo(db *DB) *TelemetryRepo {
	return &TelemetryRepo{db: db}
}

// InsertLogs stores a batch of log records in one transaction so a
// batch is persisted atomically or not at all.
func (r *TelemetryRepo) InsertLogs(ctx context.Context, logs []domain.LogRecord) error {
	if len(logs) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO telemetry_logs (level, category, message, data, recorded_at, received_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range logs {
		data, err := encodeJSON(rec.Data)
		if err != nil {
			return fmt.Errorf("encode log data: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, rec.Level, rec.Category, rec.Message, data, rec.Timestamp); err != nil {
			return fmt.Errorf("failed to insert log record: %w", err)
		}
	}

	return tx.Commit()
}

// InsertErrors stores a batch of error reports in one transaction.
func (r *TelemetryRepo) InsertErrors(ctx context.Context, reports []domain.ErrorReport) error {
	if len(reports) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO telemetry_errors (
			code, category, severity, message, retryable, session_id,
			fingerprint, stack_trace, additional_data, recorded_at, received_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rep := range reports {
		data, err := encodeJSON(rep.AdditionalData)
		if err != nil {
			return fmt.Errorf("encode additional data: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			rep.Code, rep.Category, rep.Severity, rep.Message, rep.Retryable,
			rep.SessionID, rep.Fingerprint, rep.StackTrace, data, rep.Timestamp,
		); err != nil {
			return fmt.Errorf("failed to insert error report: %w", err)
		}
	}

	return tx.Commit()
}

// Counts summarizes stored telemetry for the status command.
type Counts struct {
	Logs   int64 `db:"logs"`
	Errors int64 `db:"errors"`
}

// CountSince returns entry counts received after the cutoff.
func (r *TelemetryRepo) CountSince(ctx context.Context, cutoff time.Time) (Counts, error) {
	var c Counts
	err := r.db.GetContext(ctx, &c.Logs,
		`SELECT COUNT(*) FROM telemetry_logs WHERE received_at >= $1`, cutoff)
	if err != nil {
		return c, fmt.Errorf("count logs: %w", err)
	}
	err = r.db.GetContext(ctx, &c.Errors,
		`SELECT COUNT(*) FROM telemetry_errors WHERE received_at >= $1`, cutoff)
	if err != nil {
		return c, fmt.Errorf("count errors: %w", err)
	}
	return c, nil
}

// Purge deletes entries received before the cutoff and reports how many
// rows were removed.
func (r *TelemetryRepo) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	var total int64
	for _, table := range []string{"telemetry_logs", "telemetry_errors"} {
		res, err := r.db.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE received_at < $1`, table), cutoff)
		if err != nil {
			return total, fmt.Errorf("purge %s: %w", table, err)
		}
		n, _ := res.RowsAffected()
		total += n
	}
	return total, nil
}
