package negotiation

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"shopsync/internal/model"
)

// Config controls Middleware behaviour.
type Config struct {
	// ServerVersion is the API version this server implements, e.g. "v1.0.0".
	ServerVersion string

	// RequireHeader rejects requests without a Storefront-Client header.
	// When false such requests are admitted as legacy clients.
	RequireHeader bool
}

// Middleware creates HTTP middleware that negotiates the client API version.
// Parses the Storefront-Client header, checks semver compatibility, and stores
// NegotiatedContext in the request context for handlers.
func Middleware(cfg Config, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isExemptPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			negotiated := &NegotiatedContext{ServerVersion: cfg.ServerVersion}

			header := r.Header.Get(ClientHeader)
			if header == "" {
				if cfg.RequireHeader {
					writeNegotiationError(w, http.StatusBadRequest, ClientHeaderInvalid,
						"Storefront-Client header is required")
					return
				}
				negotiated.Legacy = true
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), NegotiationContextKey, negotiated)))
				return
			}

			info, err := ParseClientHeader(header)
			if err != nil {
				logger.Warn("invalid Storefront-Client header",
					slog.String("header", header),
					slog.String("error", err.Error()))
				writeNegotiationError(w, http.StatusBadRequest, ClientHeaderInvalid,
					"Invalid Storefront-Client header: "+err.Error())
				return
			}

			if !Compatible(cfg.ServerVersion, info.Version) {
				logger.Warn("incompatible client version",
					slog.String("client", info.Name),
					slog.String("client_version", info.Version),
					slog.String("server_version", cfg.ServerVersion))
				apiErr := model.NewIncompatibleError(info.Version, cfg.ServerVersion)
				writeNegotiationError(w, apiErr.StatusCode, apiErr.Code, apiErr.Message)
				return
			}

			negotiated.Client = info
			reqCtx := context.WithValue(r.Context(), NegotiationContextKey, negotiated)
			next.ServeHTTP(w, r.WithContext(reqCtx))
		})
	}
}

// isExemptPath returns true for paths that don't take part in negotiation.
// Health checks are infrastructure; MCP clients identify themselves in-protocol.
func isExemptPath(path string) bool {
	switch {
	case path == "/health" || path == "/healthz":
		return true
	case path == "/mcp" || strings.HasPrefix(path, "/mcp/"):
		return true
	default:
		return false
	}
}

// writeNegotiationError writes the standard error envelope.
func writeNegotiationError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}{}
	resp.Error.Code = code
	resp.Error.Message = message

	json.NewEncoder(w).Encode(resp)
}

// GetNegotiatedContext retrieves the negotiation result from request context.
// Returns nil if negotiation was skipped (e.g., exempt path) or not set.
func GetNegotiatedContext(ctx context.Context) *NegotiatedContext {
	v, _ := ctx.Value(NegotiationContextKey).(*NegotiatedContext)
	return v
}
