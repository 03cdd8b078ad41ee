package postgres

import (
	"context"
	"database/sql"
	"errors"

	"pet-reminder/internal/ports/settings"
)

// SettingsRepo persiste los flags de la app en una tabla clave/valor.
//
//	CREATE TABLE app_flags (
//	    key   text PRIMARY KEY,
//	    value boolean NOT NULL
//	);
type SettingsRepo struct {
	db *sql.DB
}

func NewSettingsRepo(db *sql.DB) settings.Store {
	return &SettingsRepo{db: db}
}

func (r *SettingsRepo) Bool(ctx context.Context, key string) (bool, error) {
	var value bool
	err := r.db.QueryRowContext(ctx, `
		SELECT value FROM app_flags WHERE key = $1
	`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return value, nil
}

func (r *SettingsRepo) SetBool(ctx context.Context, key string, value bool) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO app_flags (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`, key, value)
	return err
}
