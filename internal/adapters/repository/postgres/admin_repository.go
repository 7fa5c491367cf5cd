package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vncsmyrnk/opinionpoll/internal/core/domain"
	"github.com/vncsmyrnk/opinionpoll/internal/core/ports"
)

type AdminRepository struct {
	db *sql.DB
}

func NewAdminRepository(db *sql.DB) ports.AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	query := `SELECT id, username, password_hash, created_at, updated_at FROM admins WHERE username = $1`
	return r.getOne(ctx, query, username)
}

func (r *AdminRepository) GetByID(ctx context.Context, id int64) (*domain.Admin, error) {
	query := `SELECT id, username, password_hash, created_at, updated_at FROM admins WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *AdminRepository) getOne(ctx context.Context, query string, arg any) (*domain.Admin, error) {
	admin := &domain.Admin{}
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&admin.ID, &admin.Username, &admin.PasswordHash, &admin.CreatedAt, &admin.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return admin, nil
}

func (r *AdminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	query := `INSERT INTO admins (username, password_hash) VALUES ($1, $2) RETURNING id, created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, admin.Username, admin.PasswordHash).
		Scan(&admin.ID, &admin.CreatedAt, &admin.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAdminExists
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

func (r *AdminRepository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	query := `UPDATE admins SET password_hash = $1, updated_at = NOW() WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, hash, id)
	if err != nil {
		return fmt.Errorf("failed to update admin password: %w", err)
	}
	return expectAffected(res, domain.ErrAdminNotFound)
}
