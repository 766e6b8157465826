// Package audit keeps an append-only trail of logo checks in SQLite.
package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/matiasleandrokruk/logoguard/internal/domain/imagecheck"
	"github.com/matiasleandrokruk/logoguard/internal/infra/eventbus"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 1000

	// fixed-width so lexical order equals chronological order
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

var ErrInvalidRecord = errors.New("invalid check record")

// AuditService records checks. All operations are append-only.
type AuditService struct {
	db *sql.DB
}

func NewAuditService(db *sql.DB) *AuditService {
	return &AuditService{db: db}
}

// Record appends rec. An empty ID is filled with a UUIDv7.
func (s *AuditService) Record(ctx context.Context, rec *CheckRecord) error {
	if rec == nil || rec.URLHash == "" || rec.Reason == "" {
		return ErrInvalidRecord
	}
	if rec.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("audit: generate id: %w", err)
		}
		rec.ID = id.String()
	}
	if rec.CheckedAt.IsZero() {
		rec.CheckedAt = time.Now()
	}
	rec.CheckedAt = rec.CheckedAt.UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO check_record (
			id, url, url_hash, valid, reason, detail, status_code,
			content_type, format, width, height, duration_ms, checked_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.URL,
		rec.URLHash,
		boolToInt(rec.Valid),
		rec.Reason,
		rec.Detail,
		rec.StatusCode,
		rec.ContentType,
		rec.Format,
		rec.Width,
		rec.Height,
		rec.Duration.Milliseconds(),
		rec.CheckedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("audit: insert: %w", err)
	}
	return nil
}

// ListRecent returns the newest records first.
func (s *AuditService) ListRecent(ctx context.Context, limit int) ([]*CheckRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`
		FROM check_record
		ORDER BY checked_at DESC, id DESC
		LIMIT ?
	`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("audit: list recent: %w", err)
	}
	return scanRecords(rows)
}

// ListByURL returns the newest records for one exact URL.
func (s *AuditService) ListByURL(ctx context.Context, rawURL string, limit int) ([]*CheckRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`
		FROM check_record
		WHERE url_hash = ? AND url = ?
		ORDER BY checked_at DESC, id DESC
		LIMIT ?
	`, HashURL(rawURL), rawURL, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("audit: list by url: %w", err)
	}
	return scanRecords(rows)
}

// Consume records every imagecheck.Result arriving on events until ctx is
// done or the channel closes. Subscribe before publishing starts so no event
// is missed. Failures are logged and skipped.
func (s *AuditService) Consume(ctx context.Context, events <-chan eventbus.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			res, ok := evt.Payload.(imagecheck.Result)
			if !ok {
				continue
			}
			if err := s.Record(ctx, RecordFromResult(res)); err != nil {
				log.Warn().Err(err).Str("url", res.URL).Msg("audit record failed")
			}
		}
	}
}

const selectColumns = `
	SELECT id, url, url_hash, valid, reason, detail, status_code,
	       content_type, format, width, height, duration_ms, checked_at`

func scanRecords(rows *sql.Rows) ([]*CheckRecord, error) {
	defer rows.Close()

	out := make([]*CheckRecord, 0)
	for rows.Next() {
		var (
			rec        CheckRecord
			valid      int
			durationMS int64
			checkedAt  string
		)
		if err := rows.Scan(
			&rec.ID,
			&rec.URL,
			&rec.URLHash,
			&valid,
			&rec.Reason,
			&rec.Detail,
			&rec.StatusCode,
			&rec.ContentType,
			&rec.Format,
			&rec.Width,
			&rec.Height,
			&durationMS,
			&checkedAt,
		); err != nil {
			return nil, fmt.Errorf("audit: scan: %w", err)
		}
		rec.Valid = valid == 1
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		t, err := time.Parse(timeLayout, checkedAt)
		if err != nil {
			return nil, fmt.Errorf("audit: parse checked_at %q: %w", checkedAt, err)
		}
		rec.CheckedAt = t
		out = append(out, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	}
	return limit
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
