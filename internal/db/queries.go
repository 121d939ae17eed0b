package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/burnrate-tui/internal/logger"
	"github.com/j-veylop/burnrate-tui/internal/models"
)

// InsertUsageRecords stores records read from source in one transaction.
// Records already stored under the same (message id, request id) are
// skipped. It returns how many rows were actually inserted.
func (db *DB) InsertUsageRecords(ctx context.Context, records []models.UsageRecord, source string) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO usage_records (
			timestamp, model, input_tokens, output_tokens, cache_write_tokens,
			cache_read_tokens, cost, message_id, request_id, source_file
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	inserted := 0
	for _, r := range records {
		result, err := stmt.ExecContext(ctx,
			formatTime(r.Timestamp),
			r.Category,
			r.InputTokens,
			r.OutputTokens,
			r.CacheWriteTokens,
			r.CacheReadTokens,
			r.Cost.String(),
			nullString(r.MessageID),
			nullString(r.RequestID),
			nullString(source),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert usage record: %w", err)
		}
		if n, err := result.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit usage records: %w", err)
	}
	return inserted, nil
}

// GetUsageRecordsSince returns every record at or after since, oldest first.
func (db *DB) GetUsageRecordsSince(ctx context.Context, since time.Time) ([]models.UsageRecord, error) {
	query := `
		SELECT timestamp, model, input_tokens, output_tokens, cache_write_tokens,
			   cache_read_tokens, cost, message_id, request_id
		FROM usage_records
		WHERE timestamp >= ?
		ORDER BY timestamp ASC, id ASC
	`

	rows, err := db.QueryContext(ctx, query, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("failed to query usage records: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var records []models.UsageRecord
	for rows.Next() {
		var r models.UsageRecord
		var ts, cost string
		var msgID, reqID sql.NullString

		err := rows.Scan(
			&ts,
			&r.Category,
			&r.InputTokens,
			&r.OutputTokens,
			&r.CacheWriteTokens,
			&r.CacheReadTokens,
			&cost,
			&msgID,
			&reqID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan usage record: %w", err)
		}

		r.Timestamp, err = parseTime(ts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse usage timestamp %q: %w", ts, err)
		}
		r.Cost, err = decimal.NewFromString(cost)
		if err != nil {
			logger.Warn("invalid stored cost", "cost", cost, "error", err)
			r.Cost = decimal.Zero
		}
		r.MessageID = msgID.String
		r.RequestID = reqID.String
		records = append(records, r)
	}

	return records, rows.Err()
}

// CountUsageRecords returns the number of stored records.
func (db *DB) CountUsageRecords(ctx context.Context) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM usage_records").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count usage records: %w", err)
	}
	return n, nil
}

// PruneUsageRecords deletes records older than before and returns how many
// were removed.
func (db *DB) PruneUsageRecords(ctx context.Context, before time.Time) (int64, error) {
	result, err := db.ExecContext(ctx, "DELETE FROM usage_records WHERE timestamp < ?", formatTime(before))
	if err != nil {
		return 0, fmt.Errorf("failed to prune usage records: %w", err)
	}
	n, _ := result.RowsAffected()
	return n, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.ParseInLocation(timeLayout, s, time.UTC)
}

// nullString returns a sql.NullString from a string.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
