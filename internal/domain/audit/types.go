package audit

import (
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/matiasleandrokruk/logoguard/internal/domain/imagecheck"
)

// CheckRecord is one persisted logo check. Records are immutable once written.
type CheckRecord struct {
	ID          string        `json:"id"`
	URL         string        `json:"url"`
	URLHash     string        `json:"url_hash"`
	Valid       bool          `json:"valid"`
	Reason      string        `json:"reason"`
	Detail      string        `json:"detail,omitempty"`
	StatusCode  int           `json:"status_code,omitempty"`
	ContentType string        `json:"content_type,omitempty"`
	Format      string        `json:"format,omitempty"`
	Width       int           `json:"width,omitempty"`
	Height      int           `json:"height,omitempty"`
	Duration    time.Duration `json:"duration"`
	CheckedAt   time.Time     `json:"checked_at"`
}

// RecordFromResult converts a validator result into a record without an ID.
func RecordFromResult(res imagecheck.Result) *CheckRecord {
	checkedAt := res.CheckedAt
	if checkedAt.IsZero() {
		checkedAt = time.Now().UTC()
	}
	return &CheckRecord{
		URL:         res.URL,
		URLHash:     HashURL(res.URL),
		Valid:       res.Valid,
		Reason:      string(res.Reason),
		Detail:      res.Detail,
		StatusCode:  res.StatusCode,
		ContentType: res.ContentType,
		Format:      string(res.Format),
		Width:       res.Width,
		Height:      res.Height,
		Duration:    res.Duration,
		CheckedAt:   checkedAt,
	}
}

// HashURL is the indexed fingerprint of a URL (BLAKE2b-256, hex).
func HashURL(rawURL string) string {
	sum := blake2b.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:])
}
