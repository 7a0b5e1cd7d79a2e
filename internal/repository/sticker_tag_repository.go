package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// StickerTagRepository manages the sticker/tag join rows. Updates rewrite the
// association set wholesale (delete-all then insert-selected); the two steps
// are not wrapped in a transaction, so a failure between them leaves the
// sticker temporarily without associations.
type StickerTagRepository interface {
	Replace(ctx context.Context, stickerID uuid.UUID, tagIDs []uuid.UUID) error
	Insert(ctx context.Context, stickerID uuid.UUID, tagIDs []uuid.UUID) error
	TagIDsForSticker(ctx context.Context, stickerID uuid.UUID) ([]uuid.UUID, error)
}

type stickerTagRepository struct {
	db *sql.DB
}

// NewStickerTagRepository creates a new instance of StickerTagRepository.
func NewStickerTagRepository(db *sql.DB) StickerTagRepository {
	return &stickerTagRepository{db: db}
}

// Replace removes every association for the sticker and inserts the supplied
// list. An empty list clears the associations.
func (r *stickerTagRepository) Replace(ctx context.Context, stickerID uuid.UUID, tagIDs []uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM sticker_tags WHERE sticker_id = $1", stickerID); err != nil {
		return fmt.Errorf("failed to clear sticker tags: %w", err)
	}

	return r.Insert(ctx, stickerID, tagIDs)
}

// Insert adds associations for the sticker. A nil or empty list is a no-op.
func (r *stickerTagRepository) Insert(ctx context.Context, stickerID uuid.UUID, tagIDs []uuid.UUID) error {
	if len(tagIDs) == 0 {
		return nil
	}

	values := make([]string, len(tagIDs))
	args := []interface{}{stickerID}
	for i, tagID := range tagIDs {
		values[i] = fmt.Sprintf("($1, $%d)", i+2)
		args = append(args, tagID)
	}

	query := fmt.Sprintf(
		"INSERT INTO sticker_tags (sticker_id, tag_id) VALUES %s", strings.Join(values, ", "))

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert sticker tags: %w", err)
	}
	return nil
}

// TagIDsForSticker returns the ids of the tags associated with a sticker.
func (r *stickerTagRepository) TagIDsForSticker(ctx context.Context, stickerID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT tag_id FROM sticker_tags WHERE sticker_id = $1", stickerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sticker tags: %w", err)
	}
	defer rows.Close()

	ids := []uuid.UUID{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan tag id: %w", err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tag ids: %w", err)
	}

	return ids, nil
}
