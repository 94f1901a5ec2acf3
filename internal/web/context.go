package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/taskdesk/internal/core"
	"github.com/JonMunkholm/taskdesk/internal/web/middleware"
)

// withRequestMetadata attaches the requesting client for import history.
func withRequestMetadata(r *http.Request) context.Context {
	return core.WithClient(r.Context(), core.Client{
		IP:        middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
}
