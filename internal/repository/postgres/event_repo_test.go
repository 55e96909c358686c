package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"campusevents/internal/domain"
)

func sampleEvent() *domain.Event {
	return &domain.Event{
		ID:                 "ev-1",
		Title:              "Jazz Night",
		Date:               time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC),
		Location:           "Main Hall",
		Description:        "Live music",
		Category:           "music",
		CreatedBy:          "owner-1",
		AllowParticipation: true,
		Participants:       []domain.Participant{{UserID: "u1"}},
		CreatedAt:          time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:          time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func eventDoc(t *testing.T, e *domain.Event) []byte {
	t.Helper()
	b, err := json.Marshal(e)
	require.NoError(t, err)
	return b
}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()
	e := sampleEvent()

	tests := []struct {
		name    string
		mock    func(mock sqlmock.Sqlmock)
		wantErr bool
	}{
		{
			name: "success",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO events \(id, owner_id, date, category, doc, version, created_at, updated_at\)`).
					WithArgs("ev-1", "owner-1", e.Date, "music", sqlmock.AnyArg(), e.CreatedAt, e.UpdatedAt).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "db error",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`INSERT INTO events`).WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			ev := sampleEvent()
			err = NewEventRepository(db).Create(ctx, ev)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, int64(1), ev.Version)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		mock    func(t *testing.T, mock sqlmock.Sqlmock)
		wantErr error
		anyErr  bool
	}{
		{
			name: "success",
			mock: func(t *testing.T, mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT doc, version FROM events WHERE id = \$1`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"doc", "version"}).AddRow(eventDoc(t, sampleEvent()), int64(4)))
			},
		},
		{
			name: "not found",
			mock: func(t *testing.T, mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT doc, version FROM events`).WithArgs("ev-1").WillReturnError(sql.ErrNoRows)
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "corrupt document",
			mock: func(t *testing.T, mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`SELECT doc, version FROM events`).
					WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"doc", "version"}).AddRow([]byte("{not json"), int64(1)))
			},
			anyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(t, mock)
			got, err := NewEventRepository(db).GetByID(ctx, "ev-1")
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
				return
			case tt.anyErr:
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "Jazz Night", got.Title)
			require.Equal(t, int64(4), got.Version)
			require.Len(t, got.Participants, 1)
			require.NotNil(t, got.CustomQuestions)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_List(t *testing.T) {
	ctx := context.Background()
	after := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	before := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		filter domain.EventFilter
		query  string
		args   []any
	}{
		{
			name:   "no filter",
			filter: domain.EventFilter{},
			query:  `SELECT doc, version FROM events ORDER BY date ASC, id ASC`,
		},
		{
			name: "every criterion",
			filter: domain.EventFilter{
				Category:      "Music",
				OwnerID:       "owner-1",
				After:         &after,
				Before:        &before,
				ParticipantID: "u1",
				Search:        " 50%_off ",
			},
			query: `SELECT doc, version FROM events WHERE lower(category) = lower($1) AND owner_id = $2 AND date > $3 AND date < $4` +
				` AND doc -> 'participants' @> $5::jsonb` +
				` AND (doc ->> 'title' ILIKE $6 OR doc ->> 'description' ILIKE $6 OR doc ->> 'location' ILIKE $6)` +
				` ORDER BY date ASC, id ASC`,
			args: []any{"Music", "owner-1", after, before, `[{"user":"u1"}]`, `%50\%\_off%`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			rows := sqlmock.NewRows([]string{"doc", "version"}).AddRow(eventDoc(t, sampleEvent()), int64(1))
			exp := mock.ExpectQuery(regexp.QuoteMeta(tt.query))
			if len(tt.args) > 0 {
				exp = exp.WithArgs(toDriverArgs(tt.args)...)
			}
			exp.WillReturnRows(rows)

			got, err := NewEventRepository(db).List(ctx, tt.filter)
			require.NoError(t, err)
			require.Len(t, got, 1)
			require.Equal(t, "ev-1", got[0].ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func toDriverArgs(args []any) []driver.Value {
	out := make([]driver.Value, len(args))
	for i, a := range args {
		out[i] = a
	}
	return out
}

func TestEventRepository_Save(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		mock        func(mock sqlmock.Sqlmock)
		wantErr     error
		wantVersion int64
	}{
		{
			name: "success bumps version",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE events`).
					WithArgs("ev-1", sqlmock.AnyArg(), sampleEvent().Date, "music", sampleEvent().UpdatedAt, int64(2)).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			wantVersion: 3,
		},
		{
			name: "stale version",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE events`).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT EXISTS`).WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
			},
			wantErr:     domain.ErrConflict,
			wantVersion: 2,
		},
		{
			name: "deleted meanwhile",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`UPDATE events`).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(`SELECT EXISTS`).WithArgs("ev-1").
					WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
			},
			wantErr:     domain.ErrNotFound,
			wantVersion: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			e := sampleEvent()
			e.Version = 2
			err = NewEventRepository(db).Save(ctx, e)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.wantVersion, e.Version)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_Delete(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).WithArgs("ev-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).WithArgs("ev-2").WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewEventRepository(db)
	require.NoError(t, repo.Delete(ctx, "ev-1"))
	require.ErrorIs(t, repo.Delete(ctx, "ev-2"), domain.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
