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
	ErrTagNotFound      = errors.New("tag not found")
	ErrTagAlreadyExists = errors.New("tag with this slug already exists")
)

// TagUpdate is a partial field set for a tag update; nil fields are left
// untouched.
type TagUpdate struct {
	NameES *string
	NameEN *string
	Slug   *string
}

// TagRepository defines the interface for tag data access.
type TagRepository interface {
	Create(ctx context.Context, tag *domain.Tag) error
	Update(ctx context.Context, id uuid.UUID, update TagUpdate) (*domain.Tag, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*domain.Tag, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Tag, error)
}

type tagRepository struct {
	db *sql.DB
}

// NewTagRepository creates a new instance of TagRepository.
func NewTagRepository(db *sql.DB) TagRepository {
	return &tagRepository{db: db}
}

// Create inserts a new tag.
func (r *tagRepository) Create(ctx context.Context, tag *domain.Tag) error {
	query := `
		INSERT INTO tags (id, name_es, name_en, slug, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(ctx, query, tag.ID, tag.NameES, tag.NameEN, tag.Slug, tag.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "tags_slug_key") {
			return ErrTagAlreadyExists
		}
		return fmt.Errorf("failed to create tag: %w", err)
	}

	return nil
}

// Update applies a partial field set and returns the updated tag.
func (r *tagRepository) Update(ctx context.Context, id uuid.UUID, update TagUpdate) (*domain.Tag, error) {
	sets := []string{}
	args := []interface{}{id}
	argIndex := 2

	if update.NameES != nil {
		sets = append(sets, fmt.Sprintf("name_es = $%d", argIndex))
		args = append(args, *update.NameES)
		argIndex++
	}
	if update.NameEN != nil {
		sets = append(sets, fmt.Sprintf("name_en = $%d", argIndex))
		args = append(args, *update.NameEN)
		argIndex++
	}
	if update.Slug != nil {
		sets = append(sets, fmt.Sprintf("slug = $%d", argIndex))
		args = append(args, *update.Slug)
	}

	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}

	query := fmt.Sprintf(`
		UPDATE tags
		SET %s
		WHERE id = $1
		RETURNING id, name_es, name_en, slug, created_at
	`, strings.Join(sets, ", "))

	tag := &domain.Tag{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&tag.ID, &tag.NameES, &tag.NameEN, &tag.Slug, &tag.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTagNotFound
		}
		if strings.Contains(err.Error(), "tags_slug_key") {
			return nil, ErrTagAlreadyExists
		}
		return nil, fmt.Errorf("failed to update tag: %w", err)
	}

	return tag, nil
}

// Delete removes a tag; its sticker associations are pruned by the
// ON DELETE CASCADE constraint on sticker_tags.
func (r *tagRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM tags WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrTagNotFound
	}

	return nil
}

// List retrieves all tags ordered by Spanish name.
func (r *tagRepository) List(ctx context.Context) ([]*domain.Tag, error) {
	query := `
		SELECT id, name_es, name_en, slug, created_at
		FROM tags
		ORDER BY name_es ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	tags := []*domain.Tag{}
	for rows.Next() {
		tag := &domain.Tag{}
		if err := rows.Scan(&tag.ID, &tag.NameES, &tag.NameEN, &tag.Slug, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}

	return tags, nil
}

// FindByID retrieves a tag by ID.
func (r *tagRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Tag, error) {
	query := `
		SELECT id, name_es, name_en, slug, created_at
		FROM tags
		WHERE id = $1
	`

	tag := &domain.Tag{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tag.ID, &tag.NameES, &tag.NameEN, &tag.Slug, &tag.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTagNotFound
		}
		return nil, fmt.Errorf("failed to find tag by ID: %w", err)
	}

	return tag, nil
}
