package imagecheck

import "time"

// TopicCheckCompleted is the event bus topic carrying a Result after every check.
const TopicCheckCompleted = "logo.check.completed"

// Reason explains why a check produced its outcome. It is diagnostic only.
type Reason string

const (
	ReasonOK            Reason = "ok"
	ReasonInvalidURL    Reason = "invalid_url"
	ReasonRequestFailed Reason = "request_failed"
	ReasonTimeout       Reason = "timeout"
	ReasonHTTPStatus    Reason = "http_status"
	ReasonTooLarge      Reason = "too_large"
	ReasonNotImage      Reason = "not_image"
	ReasonDecodeFailed  Reason = "decode_failed"
	ReasonInternal      Reason = "internal"
)

// Result is the outcome of one fetch against one URL.
// Valid is the only field callers of the tool ever see.
type Result struct {
	URL         string
	Valid       bool
	Reason      Reason
	Detail      string
	StatusCode  int
	ContentType string
	Format      Format
	Width       int
	Height      int
	Duration    time.Duration
	CheckedAt   time.Time
}
