package middleware

import (
	"net/http"
	"strings"

	"github.com/SscSPs/money_tracker_ledger/internal/utils"
	"github.com/gin-gonic/gin"
)

// pathsToSkip contains paths that should not be tracked by PostHog
var pathsToSkip = map[string]bool{
	"/health": true,
}

// PosthogMiddleware records one usage event per successful authenticated request.
// Only route shape and status are sent; request bodies never leave the process.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !posthogClient.IsInitialized() || pathsToSkip[c.Request.URL.Path] {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		ownerID, exists := GetOwnerIDFromContext(c)
		if !exists {
			return
		}

		eventName := EventNameForRoute(c.Request.Method, c.FullPath())
		if eventName == "" {
			return
		}

		posthogClient.Enqueue(ownerID, eventName, map[string]any{
			"method":      c.Request.Method,
			"route":       c.FullPath(),
			"status_code": c.Writer.Status(),
		})
	}
}

// EventNameForRoute turns "POST /api/v1/events/:eventID" into "post_api_v1_events_eventID".
func EventNameForRoute(method, fullPath string) string {
	path := strings.TrimPrefix(fullPath, "/")
	if path == "" {
		return ""
	}
	path = strings.ReplaceAll(path, ":", "")
	path = strings.ReplaceAll(path, "/", "_")
	return strings.ToLower(method) + "_" + path
}
