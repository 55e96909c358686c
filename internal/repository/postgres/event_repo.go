package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"campusevents/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

// NewEventRepository stores events as JSONB documents with an optimistic version column.
func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	doc, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	query := `
		INSERT INTO events (id, owner_id, date, category, doc, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 1, $6, $7)
	`
	if _, err := r.DB.ExecContext(ctx, query, e.ID, e.CreatedBy, e.Date, e.Category, doc, e.CreatedAt, e.UpdatedAt); err != nil {
		return err
	}
	e.Version = 1
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	var doc []byte
	var version int64
	err := r.DB.QueryRowContext(ctx, `SELECT doc, version FROM events WHERE id = $1`, id).Scan(&doc, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return decodeEvent(doc, version)
}

func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Category != "" {
		where = append(where, "lower(category) = lower("+arg(filter.Category)+")")
	}
	if filter.OwnerID != "" {
		where = append(where, "owner_id = "+arg(filter.OwnerID))
	}
	if filter.After != nil {
		where = append(where, "date > "+arg(*filter.After))
	}
	if filter.Before != nil {
		where = append(where, "date < "+arg(*filter.Before))
	}
	if filter.ParticipantID != "" {
		probe, err := json.Marshal([]map[string]string{{"user": filter.ParticipantID}})
		if err != nil {
			return nil, fmt.Errorf("marshal participant filter: %w", err)
		}
		where = append(where, "doc -> 'participants' @> "+arg(string(probe))+"::jsonb")
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		p := arg("%" + escapeLike(q) + "%")
		where = append(where, fmt.Sprintf("(doc ->> 'title' ILIKE %[1]s OR doc ->> 'description' ILIKE %[1]s OR doc ->> 'location' ILIKE %[1]s)", p))
	}

	query := `SELECT doc, version FROM events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date ASC, id ASC"

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		var doc []byte
		var version int64
		if err := rows.Scan(&doc, &version); err != nil {
			return nil, err
		}
		e, err := decodeEvent(doc, version)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Save writes the document only if the stored version still matches e.Version.
func (r *eventRepository) Save(ctx context.Context, e *domain.Event) error {
	doc, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	query := `
		UPDATE events
		SET doc = $2, date = $3, category = $4, updated_at = $5, version = version + 1
		WHERE id = $1 AND version = $6
	`
	result, err := r.DB.ExecContext(ctx, query, e.ID, doc, e.Date, e.Category, e.UpdatedAt, e.Version)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists bool
		if err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, e.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return domain.ErrConflict
	}
	e.Version++
	return nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func decodeEvent(doc []byte, version int64) (*domain.Event, error) {
	e := &domain.Event{}
	if err := json.Unmarshal(doc, e); err != nil {
		return nil, fmt.Errorf("decode event document: %w", err)
	}
	if e.Participants == nil {
		e.Participants = []domain.Participant{}
	}
	if e.CustomQuestions == nil {
		e.CustomQuestions = []domain.CustomQuestion{}
	}
	e.Version = version
	return e, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
