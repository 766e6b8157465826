package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	pkgauth "github.com/matiasleandrokruk/logoguard/pkg/auth"
)

// AuthConfig holds the HTTP credentials. Both empty disables auth.
type AuthConfig struct {
	JWTSecret  string
	APIKeyHash string
}

func (c AuthConfig) Enabled() bool {
	return c.JWTSecret != "" || c.APIKeyHash != ""
}

const apiKeyHeader = "X-API-Key"

type ctxKey string

const subjectKey ctxKey = "subject"

// SubjectFrom returns the authenticated caller, or "" when auth is off.
func SubjectFrom(ctx context.Context) string {
	s, _ := ctx.Value(subjectKey).(string)
	return s
}

// AuthMiddleware accepts either "Authorization: Bearer <jwt>" signed with
// JWTSecret or an X-API-Key matching APIKeyHash.
func AuthMiddleware(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject, ok := authenticate(cfg, r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "missing or invalid credentials")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), subjectKey, subject)))
		})
	}
}

func authenticate(cfg AuthConfig, r *http.Request) (string, bool) {
	if token := extractBearerToken(r); token != "" && cfg.JWTSecret != "" {
		claims, err := pkgauth.ParseToken(cfg.JWTSecret, token)
		if err != nil {
			return "", false
		}
		return claims.Subject, true
	}
	if key := r.Header.Get(apiKeyHeader); key != "" && cfg.APIKeyHash != "" {
		if pkgauth.VerifyAPIKey(cfg.APIKeyHash, key) {
			return "api-key", true
		}
	}
	return "", false
}

// extractBearerToken returns "" unless the header uses the Bearer scheme.
func extractBearerToken(r *http.Request) string {
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}

// RequestLogger logs one line per request at info.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("size", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("remote_addr", r.RemoteAddr).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
