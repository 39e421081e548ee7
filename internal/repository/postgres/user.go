package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gomate-backend/internal/domain"
	"gomate-backend/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (email, password_hash, name, bio, avatar_url, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, u.Email, u.PasswordHash, u.Name, u.Bio, u.AvatarURL, time.Now()).Scan(&u.ID)
	if err != nil {
		return domain.StorageError("failed to create user", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT id, email, password_hash, name, bio, avatar_url, created_on, updated_on FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Bio, &u.AvatarURL, &u.CreatedOn, &u.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("user %d not found", id)
	}
	if err != nil {
		return nil, domain.StorageError("failed to get user", err)
	}
	return u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT id, email, password_hash, name, bio, avatar_url, created_on, updated_on FROM users WHERE email = $1`
	err := r.db.QueryRowContext(ctx, query, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Bio, &u.AvatarURL, &u.CreatedOn, &u.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NotFoundf("user not found")
	}
	if err != nil {
		return nil, domain.StorageError("failed to get user by email", err)
	}
	return u, nil
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET name = $1, bio = $2, avatar_url = $3, updated_on = $4 WHERE id = $5`
	res, err := r.db.ExecContext(ctx, query, u.Name, u.Bio, u.AvatarURL, time.Now(), u.ID)
	if err != nil {
		return domain.StorageError("failed to update user", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFoundf("user %d not found", u.ID)
	}
	return nil
}
