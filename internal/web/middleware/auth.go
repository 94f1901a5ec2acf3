package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/JonMunkholm/taskdesk/internal/config"
	"github.com/JonMunkholm/taskdesk/internal/logging"
)

// APIKeyHeader carries the admin key on mutation requests.
const APIKeyHeader = "X-API-Key"

// APIKeyAuth gates the wrapped routes behind one of cfg.APIKeys. When
// cfg.RequireAPIKey is false every request passes.
func APIKeyAuth(cfg config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireAPIKey {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(APIKeyHeader)
			switch {
			case key == "":
				reject(w, r, http.StatusUnauthorized, "missing API key")
			case !validAPIKey(key, cfg.APIKeys):
				reject(w, r, http.StatusForbidden, "invalid API key")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func reject(w http.ResponseWriter, r *http.Request, status int, reason string) {
	logging.FromContext(r.Context()).Warn("auth rejected",
		"reason", reason,
		"path", r.URL.Path,
		"method", r.Method,
		"remote_addr", r.RemoteAddr,
	)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   reason,
		"message": "You are not authorized to perform this action",
		"action":  "Provide a valid admin API key",
		"code":    "AUTH001",
	})
}

// validAPIKey compares key against every configured key in constant time.
func validAPIKey(key string, keys []string) bool {
	valid := 0
	for _, k := range keys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(k))
	}
	return valid == 1
}
