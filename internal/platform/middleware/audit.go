package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/NLight-n/IRLog/internal/platform/auth"
)

// Audit returns middleware that emits a structured access-trail event for every
// /api/v1 request: who touched which resource, the action type, and the outcome.
// Row-level before/after auditing is handled separately by the domain services.
func Audit(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			path := req.URL.Path
			if !strings.HasPrefix(path, "/api/v1/") {
				return next(c)
			}

			err := next(c)

			rid, _ := c.Get("request_id").(string)
			ctx := req.Context()

			logger.Info().
				Str("type", "access_audit").
				Str("request_id", rid).
				Int("user_id", auth.UserIDFromContext(ctx)).
				Str("username", auth.UsernameFromContext(ctx)).
				Str("resource", resourceFromPath(path)).
				Str("action", methodToAction(req.Method)).
				Str("method", req.Method).
				Str("path", path).
				Str("remote_ip", c.RealIP()).
				Int("status", c.Response().Status).
				Time("timestamp", time.Now().UTC()).
				Msg("record_access")

			return err
		}
	}
}

func methodToAction(method string) string {
	switch method {
	case http.MethodGet, http.MethodHead:
		return "read"
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

// resourceFromPath extracts the first path segment after /api/v1/.
func resourceFromPath(path string) string {
	segments := strings.Split(strings.TrimPrefix(path, "/api/v1/"), "/")
	if len(segments) > 0 && segments[0] != "" {
		return segments[0]
	}
	return "unknown"
}
