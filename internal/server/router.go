package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"github.com/matiasleandrokruk/logoguard/internal/domain/audit"
	"github.com/matiasleandrokruk/logoguard/internal/domain/tool"
)

const maxRequestBytes = 64 << 10

// HistoryLister is the read side of the audit trail.
type HistoryLister interface {
	ListRecent(ctx context.Context, limit int) ([]*audit.CheckRecord, error)
	ListByURL(ctx context.Context, rawURL string, limit int) ([]*audit.CheckRecord, error)
}

// RouterDeps are the collaborators NewRouter mounts. History may be nil.
type RouterDeps struct {
	Registry *tool.ToolRegistry
	MCP      *mcp.Server
	History  HistoryLister
	Auth     AuthConfig
}

// NewRouter creates the HTTP surface:
//
//	GET  /health
//	*    /mcp                  streamable MCP transport
//	POST /api/v1/validate      {"logo_url": "..."} -> {"valid": bool}
//	GET  /api/v1/checks        audit records (only when History is set)
//
// /mcp and /api/v1 sit behind AuthMiddleware when auth is configured.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		if deps.Auth.Enabled() {
			r.Use(AuthMiddleware(deps.Auth))
		}

		if deps.MCP != nil {
			srv := deps.MCP
			r.Handle("/mcp", mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return srv }, nil))
		}

		r.Route("/api/v1", func(r chi.Router) {
			r.Post("/validate", validateHandler(deps.Registry))
			if deps.History != nil {
				r.Get("/checks", checksHandler(deps.History))
			}
		})
	})

	return r
}

type validateResponse struct {
	Valid bool `json:"valid"`
}

func validateHandler(registry *tool.ToolRegistry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
				return
			}
			writeError(w, http.StatusBadRequest, "failed to read request body")
			return
		}

		out, err := registry.Invoke(r.Context(), tool.BuiltinValidateLogoURL, body)
		switch {
		case errors.Is(err, tool.ErrToolValidationFailed):
			writeError(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			writeError(w, http.StatusInternalServerError, "validation failed")
			return
		}

		var valid bool
		if err := json.Unmarshal(out, &valid); err != nil {
			writeError(w, http.StatusInternalServerError, "validation failed")
			return
		}
		log.Debug().
			Str("subject", SubjectFrom(r.Context())).
			Bool("valid", valid).
			Msg("validate request")
		writeJSON(w, http.StatusOK, validateResponse{Valid: valid})
	}
}

func checksHandler(history HistoryLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		var (
			records []*audit.CheckRecord
			err     error
		)
		if u := r.URL.Query().Get("url"); u != "" {
			records, err = history.ListByURL(r.Context(), u, limit)
		} else {
			records, err = history.ListRecent(r.Context(), limit)
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list checks")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": records})
	}
}
