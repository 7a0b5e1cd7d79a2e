package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"calcosnqn/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrAdminUserNotFound      = errors.New("admin user not found")
	ErrAdminUserAlreadyExists = errors.New("admin user with this email already exists")
)

// AdminUserRepository defines the interface for back-office account access.
type AdminUserRepository interface {
	Create(ctx context.Context, user *domain.AdminUser) error
	FindByEmail(ctx context.Context, email string) (*domain.AdminUser, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.AdminUser, error)
}

type adminUserRepository struct {
	db *sql.DB
}

// NewAdminUserRepository creates a new instance of AdminUserRepository.
func NewAdminUserRepository(db *sql.DB) AdminUserRepository {
	return &adminUserRepository{db: db}
}

// Create inserts a new admin account.
func (r *adminUserRepository) Create(ctx context.Context, user *domain.AdminUser) error {
	query := `
		INSERT INTO admin_users (id, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if strings.Contains(err.Error(), "admin_users_email_key") {
			return ErrAdminUserAlreadyExists
		}
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	return nil
}

// FindByEmail retrieves an admin account by email.
func (r *adminUserRepository) FindByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	query := `
		SELECT id, email, password_hash, role, created_at, updated_at
		FROM admin_users
		WHERE email = $1
	`

	user := &domain.AdminUser{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAdminUserNotFound
		}
		return nil, fmt.Errorf("failed to find admin user by email: %w", err)
	}

	return user, nil
}

// FindByID retrieves an admin account by ID.
func (r *adminUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.AdminUser, error) {
	query := `
		SELECT id, email, password_hash, role, created_at, updated_at
		FROM admin_users
		WHERE id = $1
	`

	user := &domain.AdminUser{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrAdminUserNotFound
		}
		return nil, fmt.Errorf("failed to find admin user by ID: %w", err)
	}

	return user, nil
}
