package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
)

// ownerIDKey is the key used to store the authenticated owner's ID.
const ownerIDKey = contextKey("ownerID")

// WithOwnerID returns a copy of ctx carrying the authenticated owner id.
func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerIDKey, ownerID)
}

// GetOwnerIDFromContext retrieves the authenticated owner ID from the request context.
// It returns the owner ID and a boolean indicating if it was found.
func GetOwnerIDFromContext(c *gin.Context) (string, bool) {
	ownerID, ok := c.Request.Context().Value(ownerIDKey).(string)
	if !ok || ownerID == "" {
		return "", false
	}
	return ownerID, true
}
