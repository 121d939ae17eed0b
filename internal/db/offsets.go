package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/j-veylop/burnrate-tui/internal/logger"
)

// FileOffset records how far a log file has been consumed.
type FileOffset struct {
	Path      string
	Offset    int64
	Size      int64
	UpdatedAt time.Time
}

// GetFileOffset returns the stored offset for path. found is false when the
// file has never been read.
func (db *DB) GetFileOffset(ctx context.Context, path string) (FileOffset, bool, error) {
	query := `SELECT path, offset_bytes, size_bytes, updated_at FROM file_offsets WHERE path = ?`

	var fo FileOffset
	var updated string
	err := db.QueryRowContext(ctx, query, path).Scan(&fo.Path, &fo.Offset, &fo.Size, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return FileOffset{Path: path}, false, nil
	}
	if err != nil {
		return FileOffset{}, false, fmt.Errorf("failed to get file offset: %w", err)
	}
	fo.UpdatedAt, _ = parseTime(updated)
	return fo, true, nil
}

// SetFileOffset upserts the consumed offset and observed size of path.
func (db *DB) SetFileOffset(ctx context.Context, path string, offset, size int64) error {
	query := `
		INSERT INTO file_offsets (path, offset_bytes, size_bytes, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			offset_bytes = excluded.offset_bytes,
			size_bytes = excluded.size_bytes,
			updated_at = excluded.updated_at
	`
	if _, err := db.ExecContext(ctx, query, path, offset, size, formatTime(time.Now())); err != nil {
		return fmt.Errorf("failed to set file offset: %w", err)
	}
	return nil
}

// ListFileOffsets returns every tracked file ordered by path.
func (db *DB) ListFileOffsets(ctx context.Context) ([]FileOffset, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT path, offset_bytes, size_bytes, updated_at FROM file_offsets ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("failed to query file offsets: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logger.Error("failed to close rows", "error", err)
		}
	}()

	var out []FileOffset
	for rows.Next() {
		var fo FileOffset
		var updated string
		if err := rows.Scan(&fo.Path, &fo.Offset, &fo.Size, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan file offset: %w", err)
		}
		fo.UpdatedAt, _ = parseTime(updated)
		out = append(out, fo)
	}
	return out, rows.Err()
}
