// Package imagecheck decides whether a URL resolves to a usable image.
//
// A check is a single GET with a bounded timeout followed by a status check,
// a content check (declared image/* type or a known signature) and, when the
// decode policy is on, a decode of the body. Every failure collapses to an
// invalid Result; nothing is returned as an error and nothing is retried.
package imagecheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultTimeout      = 10 * time.Second
	DefaultMaxBodyBytes = 10 << 20
	DefaultMaxPixels    = 40_000_000

	tracerName = "github.com/matiasleandrokruk/logoguard/imagecheck"
)

// Publisher receives a Result after every check. eventbus.Bus satisfies it.
type Publisher interface {
	Publish(topic string, payload any)
}

// Validator runs image URL checks. It is safe for concurrent use.
type Validator struct {
	client    *http.Client
	timeout   time.Duration
	maxBytes  int64
	maxPixels int64
	decode    bool
	tracer    trace.Tracer
	events    Publisher
	now       func() time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithHTTPClient replaces the HTTP client. Its own Timeout is left untouched;
// the per-check deadline is applied through the request context.
func WithHTTPClient(c *http.Client) Option {
	return func(v *Validator) {
		if c != nil {
			v.client = c
		}
	}
}

// WithTimeout bounds the whole check: connect, headers and body.
func WithTimeout(d time.Duration) Option {
	return func(v *Validator) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// WithMaxBodyBytes caps how much of the response body is read.
func WithMaxBodyBytes(n int64) Option {
	return func(v *Validator) {
		if n > 0 {
			v.maxBytes = n
		}
	}
}

// WithMaxPixels caps width*height of a decoded image.
func WithMaxPixels(n int64) Option {
	return func(v *Validator) {
		if n > 0 {
			v.maxPixels = n
		}
	}
}

// WithDecode turns the decode step on or off.
func WithDecode(decode bool) Option {
	return func(v *Validator) { v.decode = decode }
}

func WithTracer(t trace.Tracer) Option {
	return func(v *Validator) {
		if t != nil {
			v.tracer = t
		}
	}
}

func WithPublisher(p Publisher) Option {
	return func(v *Validator) { v.events = p }
}

// NewValidator returns a Validator with a 10s timeout, a 10 MiB body cap,
// a 40M pixel budget and decoding on.
func NewValidator(opts ...Option) *Validator {
	v := &Validator{
		client:    &http.Client{},
		timeout:   DefaultTimeout,
		maxBytes:  DefaultMaxBodyBytes,
		maxPixels: DefaultMaxPixels,
		decode:    true,
		tracer:    otel.Tracer(tracerName),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// IsValidImageURL reports whether rawURL resolves to a valid image.
func (v *Validator) IsValidImageURL(ctx context.Context, rawURL string) bool {
	return v.Check(ctx, rawURL).Valid
}

// Check runs one validation and returns the full diagnostic Result.
func (v *Validator) Check(ctx context.Context, rawURL string) (res Result) {
	start := v.now()
	ctx, span := v.tracer.Start(ctx, "imagecheck.Check",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("url.full", rawURL)),
	)

	defer func() {
		if r := recover(); r != nil {
			res = Result{URL: rawURL, Reason: ReasonInternal, Detail: fmt.Sprint(r)}
			log.Error().Interface("panic", r).Str("url", rawURL).Msg("image check panicked")
		}
		res.CheckedAt = start.UTC()
		res.Duration = v.now().Sub(start)
		v.finish(span, res)
	}()

	return v.check(ctx, rawURL)
}

func (v *Validator) check(ctx context.Context, rawURL string) Result {
	res := Result{URL: rawURL}

	target, err := parseTarget(rawURL)
	if err != nil {
		return res.fail(ReasonInvalidURL, err)
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return res.fail(ReasonInvalidURL, err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return res.fail(transportReason(ctx, err), err)
	}
	defer resp.Body.Close() //nolint:errcheck

	res.StatusCode = resp.StatusCode
	res.ContentType = resp.Header.Get("Content-Type")

	if resp.StatusCode < http.StatusOK || resp.StatusCode > 299 {
		return res.fail(ReasonHTTPStatus, fmt.Errorf("status %d", resp.StatusCode))
	}
	if resp.ContentLength > v.maxBytes {
		return res.fail(ReasonTooLarge, fmt.Errorf("content length %d exceeds %d", resp.ContentLength, v.maxBytes))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, v.maxBytes+1))
	if err != nil {
		return res.fail(transportReason(ctx, err), err)
	}
	if int64(len(body)) > v.maxBytes {
		return res.fail(ReasonTooLarge, fmt.Errorf("body exceeds %d bytes", v.maxBytes))
	}

	res.Format = SniffFormat(body)
	if res.Format == FormatUnknown && !IsImageMediaType(res.ContentType) {
		return res.fail(ReasonNotImage, fmt.Errorf("content type %q and body signature are not an image", res.ContentType))
	}

	if v.decode {
		info, err := verifyDecodable(res.Format, body, v.maxPixels)
		switch {
		case errors.Is(err, ErrTooManyPixels):
			return res.fail(ReasonTooLarge, err)
		case err != nil:
			return res.fail(ReasonDecodeFailed, err)
		}
		res.Width, res.Height = info.width, info.height
	}

	res.Valid = true
	res.Reason = ReasonOK
	return res
}

func (v *Validator) finish(span trace.Span, res Result) {
	span.SetAttributes(
		attribute.Bool("logo.valid", res.Valid),
		attribute.String("logo.reason", string(res.Reason)),
	)
	if res.StatusCode != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", res.StatusCode))
	}
	switch res.Reason {
	case ReasonRequestFailed, ReasonTimeout, ReasonInternal:
		span.SetStatus(codes.Error, res.Detail)
	}
	span.End()

	log.Debug().
		Str("url", res.URL).
		Bool("valid", res.Valid).
		Str("reason", string(res.Reason)).
		Str("detail", res.Detail).
		Int("status", res.StatusCode).
		Str("format", string(res.Format)).
		Dur("duration", res.Duration).
		Msg("logo check")

	if v.events != nil {
		v.events.Publish(TopicCheckCompleted, res)
	}
}

func (r Result) fail(reason Reason, err error) Result {
	r.Valid = false
	r.Reason = reason
	if err != nil {
		r.Detail = err.Error()
	}
	return r
}

// parseTarget accepts only absolute http(s) URLs with a host.
func parseTarget(rawURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, errors.New("empty url")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, errors.New("missing host")
	}
	return u, nil
}

func transportReason(ctx context.Context, err error) Reason {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}
	return ReasonRequestFailed
}
