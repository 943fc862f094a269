package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano

// Cursor is the position of the last row of a page in the
// (occurredAt DESC, updatedAt DESC, id DESC) ordering.
type Cursor struct {
	OccurredAt time.Time
	UpdatedAt  time.Time
	ID         string
}

// EncodeToken creates an opaque token that resumes a listing after the given cursor.
func EncodeToken(c Cursor) string {
	tokenStr := fmt.Sprintf("%s|%s|%s", c.OccurredAt.UTC().Format(timeFormat), c.UpdatedAt.UTC().Format(timeFormat), c.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken parses a token produced by EncodeToken.
func DecodeToken(token string) (Cursor, error) {
	decodedBytes, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 3)
	if len(parts) != 3 || parts[2] == "" {
		return Cursor{}, fmt.Errorf("invalid pagination token format (split)")
	}

	occurredAt, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (occurred_at parse): %w", err)
	}
	updatedAt, err := time.Parse(timeFormat, parts[1])
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (updated_at parse): %w", err)
	}

	return Cursor{OccurredAt: occurredAt, UpdatedAt: updatedAt, ID: parts[2]}, nil
}

// Before reports whether a row at (occurredAt, updatedAt, id) sorts after the cursor
// in descending order, i.e. belongs on a later page.
func (c Cursor) Before(occurredAt, updatedAt time.Time, id string) bool {
	if !occurredAt.Equal(c.OccurredAt) {
		return occurredAt.Before(c.OccurredAt)
	}
	if !updatedAt.Equal(c.UpdatedAt) {
		return updatedAt.Before(c.UpdatedAt)
	}
	return id < c.ID
}
