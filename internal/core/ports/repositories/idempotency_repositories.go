package repositories

import "context"

// IdempotencyStore remembers which event a client-supplied key produced.
type IdempotencyStore interface {
	// Reserve claims key for ownerID. When the key is already taken, reserved is false and
	// eventID holds the recorded event, or is empty while the first request is still running.
	Reserve(ctx context.Context, ownerID, key string) (eventID string, reserved bool, err error)

	// Complete binds a reserved key to the event it produced.
	Complete(ctx context.Context, ownerID, key, eventID string) error

	// Release frees a reserved key after the request failed.
	Release(ctx context.Context, ownerID, key string) error
}
