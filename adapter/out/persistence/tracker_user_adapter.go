// Package persistence provides database adapters implementing outbound ports.
package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tracker_server/core/domain"

	"github.com/jmoiron/sqlx"
)

// UserAdapter implements out.UserRepository using PostgreSQL.
type UserAdapter struct {
	db *sqlx.DB
}

// NewUserAdapter creates a new UserAdapter.
func NewUserAdapter(db *sqlx.DB) *UserAdapter {
	return &UserAdapter{db: db}
}

type userRow struct {
	ID        int64     `db:"id"`
	Email     string    `db:"email"`
	Password  string    `db:"password"`
	FirstName string    `db:"firstname"`
	LastName  string    `db:"lastname"`
	Phone     string    `db:"phone"`
	LinkedIn  string    `db:"linkedin"`
	City      string    `db:"city"`
	CreatedAt time.Time `db:"created_at"`
}

func (r *userRow) toEntity() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.Password,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Phone:        r.Phone,
		LinkedIn:     r.LinkedIn,
		City:         r.City,
		CreatedAt:    r.CreatedAt,
	}
}

// GetByEmail matches case-insensitively, like the unique index.
func (a *UserAdapter) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
		SELECT id, email, password, firstname, lastname, phone, linkedin, city, created_at
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`

	var row userRow
	if err := a.db.GetContext(ctx, &row, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return row.toEntity(), nil
}

// Create inserts the user and fills in ID and CreatedAt.
func (a *UserAdapter) Create(ctx context.Context, user *domain.User) error {
	const query = `
		INSERT INTO users (email, password, firstname, lastname, phone, linkedin, city)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := a.db.QueryRowxContext(ctx, query,
		user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.Phone, user.LinkedIn, user.City,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", translate(err))
	}
	return nil
}

func (a *UserAdapter) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	res, err := a.db.ExecContext(ctx, `UPDATE users SET password = $1 WHERE id = $2`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
