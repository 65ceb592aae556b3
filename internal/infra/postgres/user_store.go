package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"atpl-quiz-service/internal/domain"
)

// UserStore is the Postgres-backed users collection.
type UserStore struct {
	pool *pgxpool.Pool
}

func NewUserStore(pool *pgxpool.Pool) *UserStore {
	return &UserStore{pool: pool}
}

func (s *UserStore) Create(ctx context.Context, u domain.User) error {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO users (user_id, hashed_password, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO NOTHING`,
		u.UserID, u.HashedPassword, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserExists
	}
	return nil
}

func (s *UserStore) Get(ctx context.Context, userID string) (domain.User, error) {
	var (
		u          domain.User
		lastActive sql.NullTime
	)
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, hashed_password, created_at, last_active FROM users WHERE user_id=$1`,
		userID,
	).Scan(&u.UserID, &u.HashedPassword, &u.CreatedAt, &lastActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	if lastActive.Valid {
		u.LastActive = lastActive.Time
	}
	return u, nil
}

func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id, hashed_password, created_at, last_active FROM users ORDER BY created_at, user_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var (
			u          domain.User
			lastActive sql.NullTime
		)
		if err := rows.Scan(&u.UserID, &u.HashedPassword, &u.CreatedAt, &lastActive); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		if lastActive.Valid {
			u.LastActive = lastActive.Time
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *UserStore) TouchLastActive(ctx context.Context, userID string, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET last_active=$2 WHERE user_id=$1`,
		userID, at,
	)
	if err != nil {
		return fmt.Errorf("touch last active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
