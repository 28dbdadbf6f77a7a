package port

import "context"

// SessionStore is a key-value store scoped to one browsing session.
// Later writes overwrite earlier ones; there is no expiry.
type SessionStore interface {
	Get(ctx context.Context, sessionID, key string) (string, bool, error)
	Set(ctx context.Context, sessionID, key, value string) error
}
