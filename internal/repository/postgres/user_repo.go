package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"campusevents/internal/domain"
)

const uniqueViolation = "23505"

const userColumns = `
	u.id, u.username, u.email, u.password_hash, u.salt, u.role, u.college_name, u.department, u.mobile_no,
	u.created_at, u.updated_at,
	ARRAY(SELECT f.event_id FROM user_favorites f WHERE f.user_id = u.id ORDER BY f.created_at, f.event_id)
`

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, salt, role, college_name, department, mobile_no, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.DB.ExecContext(ctx, query,
		u.ID, u.Username, u.Email, u.PasswordHash, u.Salt, string(u.Role), u.CollegeName, u.Department, u.MobileNo,
		u.CreatedAt, u.UpdatedAt,
	)
	return mapUserConstraint(err)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users u WHERE u.email = $1`, email)
	return scanUser(row)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id)
	return scanUser(row)
}

func (r *userRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	if len(ids) == 0 {
		return []*domain.User{}, nil
	}
	rows, err := r.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0, len(ids))
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE users
		SET username = $2, college_name = $3, department = $4, mobile_no = $5, updated_at = $6
		WHERE id = $1
	`
	result, err := r.DB.ExecContext(ctx, query, u.ID, u.Username, u.CollegeName, u.Department, u.MobileNo, u.UpdatedAt)
	if err != nil {
		return mapUserConstraint(err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	u := &domain.User{}
	var role string
	var mobile sql.NullString
	var favorites []string
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Salt, &role, &u.CollegeName, &u.Department, &mobile,
		&u.CreatedAt, &u.UpdatedAt, pq.Array(&favorites),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	u.Role = domain.Role(role)
	if mobile.Valid {
		u.MobileNo = &mobile.String
	}
	if favorites == nil {
		favorites = []string{}
	}
	u.Favorites = favorites
	return u, nil
}

func mapUserConstraint(err error) error {
	var perr *pq.Error
	if errors.As(err, &perr) && perr.Code == uniqueViolation {
		if perr.Constraint == "users_username_key" {
			return domain.ErrDuplicateUsername
		}
		return domain.ErrDuplicateEmail
	}
	return err
}
