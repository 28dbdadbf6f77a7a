package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"ppm/internal/port"
)

type sessionStateRepo struct {
	db *sqlx.DB
}

// NewSessionStateRepo creates a PostgreSQL-backed SessionStore.
func NewSessionStateRepo(db *sqlx.DB) port.SessionStore {
	return &sessionStateRepo{db: db}
}

func (r *sessionStateRepo) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	var value string
	err := r.db.GetContext(ctx, &value,
		"SELECT value FROM session_state WHERE session_id = $1 AND key = $2", sessionID, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("sessionStateRepo.Get: %w", err)
	}
	return value, true, nil
}

func (r *sessionStateRepo) Set(ctx context.Context, sessionID, key, value string) error {
	query := `INSERT INTO session_state (session_id, key, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	if _, err := r.db.ExecContext(ctx, query, sessionID, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("sessionStateRepo.Set: %w", err)
	}
	return nil
}
