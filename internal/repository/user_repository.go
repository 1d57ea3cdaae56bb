package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ppopeskul/wa-inbox/internal/models"
)

const uniqueViolation = "23505"

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

// CreateUser stores a new account. Mobile numbers are unique.
func (r *userRepository) CreateUser(ctx context.Context, name, mobile, passwordHash string) (*models.User, error) {
	query := `
		INSERT INTO users (name, mobile, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, mobile, password_hash, created_at, updated_at`

	now := time.Now()
	var user models.User
	err := r.db.GetContext(ctx, &user, query, name, mobile, passwordHash, now, now)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// GetUserByMobile looks an account up by its mobile number.
func (r *userRepository) GetUserByMobile(ctx context.Context, mobile string) (*models.User, error) {
	query := `
		SELECT id, name, mobile, password_hash, created_at, updated_at
		FROM users
		WHERE mobile = $1`

	var user models.User
	err := r.db.GetContext(ctx, &user, query, mobile)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by mobile: %w", err)
	}

	return &user, nil
}
