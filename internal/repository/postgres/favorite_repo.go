package postgres

import (
	"context"
	"database/sql"

	"campusevents/internal/domain"
)

type favoriteRepository struct {
	DB *sql.DB
}

func NewFavoriteRepository(db *sql.DB) domain.FavoriteRepository {
	return &favoriteRepository{DB: db}
}

func (r *favoriteRepository) Add(ctx context.Context, userID, eventID string) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO user_favorites (user_id, event_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, event_id) DO NOTHING
	`, userID, eventID)
	return err
}

func (r *favoriteRepository) Remove(ctx context.Context, userID, eventID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM user_favorites WHERE user_id = $1 AND event_id = $2`, userID, eventID)
	return err
}

func (r *favoriteRepository) ListEventIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT event_id FROM user_favorites
		WHERE user_id = $1
		ORDER BY created_at, event_id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
