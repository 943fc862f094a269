package pagination

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeToken(t *testing.T) {
	// Standard values
	cursor := Cursor{
		OccurredAt: time.Date(2023, 5, 15, 0, 0, 0, 0, time.UTC),
		UpdatedAt:  time.Date(2023, 5, 15, 14, 30, 45, 123456789, time.UTC),
		ID:         "6f1c2a8e-1111-4c1e-9d4e-000000000001",
	}

	token := EncodeToken(cursor)
	assert.NotEmpty(t, token, "Token should not be empty")

	decoded, err := DecodeToken(token)
	require.NoError(t, err, "Decoding should not return an error")
	assert.Equal(t, cursor, decoded, "Cursor should match after decode")

	// Non-UTC input is normalised
	local := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("CET", 3600))
	decoded, err = DecodeToken(EncodeToken(Cursor{OccurredAt: local, UpdatedAt: local, ID: "x"}))
	require.NoError(t, err)
	assert.True(t, local.Equal(decoded.OccurredAt), "Instant should survive encoding")
	assert.Equal(t, time.UTC, decoded.OccurredAt.Location())
}

func TestDecodeTokenError(t *testing.T) {
	_, err := DecodeToken("this is not base64!")
	assert.Error(t, err, "Should return an error for invalid base64")
	assert.Contains(t, err.Error(), "base64 decode")

	noSeparator := base64.RawURLEncoding.EncodeToString([]byte("2023-05-15T00:00:00Z"))
	_, err = DecodeToken(noSeparator)
	assert.Error(t, err, "Should return an error for invalid token format")
	assert.Contains(t, err.Error(), "split")

	badDate := base64.RawURLEncoding.EncodeToString([]byte("notadate|2023-05-15T14:30:45Z|id"))
	_, err = DecodeToken(badDate)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "occurred_at parse")

	badUpdated := base64.RawURLEncoding.EncodeToString([]byte("2023-05-15T14:30:45Z|later|id"))
	_, err = DecodeToken(badUpdated)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "updated_at parse")
}

func TestCursorBefore(t *testing.T) {
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	noon := day.Add(12 * time.Hour)
	c := Cursor{OccurredAt: day, UpdatedAt: noon, ID: "m"}

	assert.True(t, c.Before(day.Add(-time.Hour), noon, "z"), "older occurredAt comes later")
	assert.False(t, c.Before(day.Add(time.Hour), noon, "a"), "newer occurredAt comes earlier")
	assert.True(t, c.Before(day, noon.Add(-time.Second), "z"), "older updatedAt breaks ties")
	assert.True(t, c.Before(day, noon, "a"), "lower id breaks remaining ties")
	assert.False(t, c.Before(day, noon, "m"), "the cursor row itself is excluded")
}
