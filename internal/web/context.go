package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/personcsv/internal/core"
)

// WithRequestMetadata adds the client IP and User-Agent to ctx so service
// logs can attribute appends.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.ContextWithClient(ctx, clientIP(r), r.UserAgent())
}
