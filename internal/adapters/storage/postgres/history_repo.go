package postgres

import (
	"context"
	"database/sql"
	"time"

	"pet-reminder/internal/domain/history"
)

// HistoryRepo archiva los completados. El orden "más reciente primero" sale
// de la consulta; dentro del mismo día desempata el momento de registro.
//
//	CREATE TABLE completion_history (
//	    id           bigserial PRIMARY KEY,
//	    pet_id       text NOT NULL,
//	    template_id  text NOT NULL,
//	    completed_on date NOT NULL,
//	    recorded_at  timestamptz NOT NULL DEFAULT now()
//	);
type HistoryRepo struct {
	db *sql.DB
}

func NewHistoryRepo(db *sql.DB) history.Repository {
	return &HistoryRepo{db: db}
}

func (r *HistoryRepo) Append(ctx context.Context, petID, templateID string, date time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO completion_history (pet_id, template_id, completed_on)
		VALUES ($1, $2, $3)
	`, petID, templateID, date)
	return err
}

func (r *HistoryRepo) ListByPet(ctx context.Context, petID string) (history.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT template_id, completed_on
		FROM completion_history
		WHERE pet_id = $1
		ORDER BY completed_on DESC, recorded_at DESC
	`, petID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(history.Record)
	for rows.Next() {
		var templateID string
		var completedOn time.Time
		if err := rows.Scan(&templateID, &completedOn); err != nil {
			return nil, err
		}
		out[templateID] = append(out[templateID], completedOn.UTC())
	}
	return out, rows.Err()
}
