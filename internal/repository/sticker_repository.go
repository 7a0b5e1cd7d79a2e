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
	ErrStickerNotFound = errors.New("sticker not found")
)

const stickerColumns = `id, model_number, name_es, name_en, description_es, description_en,
		slug, product_type, base_type, price_ars, stock, image_url, image_path,
		status, is_featured, sort_order, created_at, updated_at`

// StickerRepository defines the data access surface for stickers, including
// the public catalog query composer and the admin mutations.
type StickerRepository interface {
	List(ctx context.Context, filter domain.CatalogFilter) ([]*domain.StickerWithTags, int, error)
	FindByID(ctx context.Context, id uuid.UUID) (*domain.StickerWithTags, error)
	FindActiveBySlug(ctx context.Context, slug string) (*domain.StickerWithTags, error)
	ListAdmin(ctx context.Context) ([]*domain.StickerWithTags, error)
	Featured(ctx context.Context) ([]*domain.StickerWithTags, error)
	Related(ctx context.Context, id uuid.UUID, tagIDs []uuid.UUID) ([]*domain.StickerWithTags, error)
	ByTag(ctx context.Context, tagSlug string) ([]*domain.StickerWithTags, error)
	Stats(ctx context.Context) (*domain.DashboardStats, error)
	Create(ctx context.Context, sticker *domain.Sticker) error
	Update(ctx context.Context, id uuid.UUID, update domain.StickerUpdate) (*domain.Sticker, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateStock(ctx context.Context, id uuid.UUID, stock int) error
}

type stickerRepository struct {
	db *sql.DB
}

// NewStickerRepository creates a new instance of StickerRepository.
func NewStickerRepository(db *sql.DB) StickerRepository {
	return &stickerRepository{db: db}
}

// List executes the catalog filter: the active-only base predicate plus the
// optional search/tag/type filters, one sort key, and fixed-size pagination.
// The returned total ignores pagination; out-of-range pages yield zero rows.
func (r *stickerRepository) List(ctx context.Context, filter domain.CatalogFilter) ([]*domain.StickerWithTags, int, error) {
	conditions := []string{"status = 'active'"}
	args := []interface{}{}
	argIndex := 1

	if filter.ProductType != "" {
		conditions = append(conditions, fmt.Sprintf("product_type = $%d", argIndex))
		args = append(args, filter.ProductType)
		argIndex++
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(name_es ILIKE $%d OR name_en ILIKE $%d OR model_number ILIKE $%d)",
			argIndex, argIndex, argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	if filter.BaseType != "" {
		conditions = append(conditions, fmt.Sprintf("base_type = $%d", argIndex))
		args = append(args, filter.BaseType)
		argIndex++
	}

	if filter.TagSlug != "" {
		conditions = append(conditions, fmt.Sprintf(
			"id IN (SELECT st.sticker_id FROM sticker_tags st JOIN tags t ON t.id = st.tag_id WHERE t.slug = $%d)",
			argIndex))
		args = append(args, filter.TagSlug)
		argIndex++
	}

	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM stickers %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count stickers: %w", err)
	}

	// Sort keys map to fixed column expressions; never caller-supplied SQL.
	var orderBy string
	switch filter.Sort {
	case domain.SortPriceAsc:
		orderBy = "price_ars ASC"
	case domain.SortPriceDesc:
		orderBy = "price_ars DESC"
	case domain.SortNameAsc:
		orderBy = "name_es ASC"
	default:
		orderBy = "created_at DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * domain.ItemsPerPage

	query := fmt.Sprintf(`
		SELECT %s
		FROM stickers
		%s
		ORDER BY %s, id ASC
		LIMIT $%d OFFSET $%d
	`, stickerColumns, whereClause, orderBy, argIndex, argIndex+1)

	args = append(args, domain.ItemsPerPage, offset)

	stickers, err := r.queryStickers(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list stickers: %w", err)
	}

	withTags, err := r.attachTags(ctx, stickers)
	if err != nil {
		return nil, 0, err
	}

	return withTags, total, nil
}

// FindByID retrieves a sticker of any status with its tags.
func (r *stickerRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.StickerWithTags, error) {
	query := fmt.Sprintf("SELECT %s FROM stickers WHERE id = $1", stickerColumns)
	return r.findOne(ctx, query, id)
}

// FindActiveBySlug retrieves a publicly visible sticker by slug.
func (r *stickerRepository) FindActiveBySlug(ctx context.Context, slug string) (*domain.StickerWithTags, error) {
	query := fmt.Sprintf("SELECT %s FROM stickers WHERE slug = $1 AND status = 'active'", stickerColumns)
	return r.findOne(ctx, query, slug)
}

// ListAdmin retrieves every sticker regardless of status, newest first.
func (r *stickerRepository) ListAdmin(ctx context.Context) ([]*domain.StickerWithTags, error) {
	query := fmt.Sprintf("SELECT %s FROM stickers ORDER BY created_at DESC, id ASC", stickerColumns)

	stickers, err := r.queryStickers(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list stickers: %w", err)
	}
	return r.attachTags(ctx, stickers)
}

// Featured retrieves active featured stickers by sort order, capped at 8.
func (r *stickerRepository) Featured(ctx context.Context) ([]*domain.StickerWithTags, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM stickers
		WHERE status = 'active' AND is_featured = TRUE
		ORDER BY sort_order ASC, id ASC
		LIMIT $1
	`, stickerColumns)

	stickers, err := r.queryStickers(ctx, query, domain.FeaturedLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list featured stickers: %w", err)
	}
	return r.attachTags(ctx, stickers)
}

// Related finds up to 4 other active stickers sharing at least one of the
// given tags, deduplicated. With no tags it falls back to an arbitrary sample
// of other active stickers.
func (r *stickerRepository) Related(ctx context.Context, id uuid.UUID, tagIDs []uuid.UUID) ([]*domain.StickerWithTags, error) {
	if len(tagIDs) == 0 {
		query := fmt.Sprintf(`
			SELECT %s
			FROM stickers
			WHERE status = 'active' AND id <> $1
			LIMIT $2
		`, stickerColumns)

		stickers, err := r.queryStickers(ctx, query, id, domain.RelatedLimit)
		if err != nil {
			return nil, fmt.Errorf("failed to list related stickers: %w", err)
		}
		return r.attachTags(ctx, stickers)
	}

	placeholders := make([]string, len(tagIDs))
	args := []interface{}{id}
	for i, tagID := range tagIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, tagID)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM stickers
		WHERE status = 'active'
		  AND id IN (
			SELECT DISTINCT sticker_id
			FROM sticker_tags
			WHERE tag_id IN (%s) AND sticker_id <> $1
		  )
		LIMIT %d
	`, stickerColumns, strings.Join(placeholders, ", "), domain.RelatedLimit)

	stickers, err := r.queryStickers(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list related stickers: %w", err)
	}
	return r.attachTags(ctx, stickers)
}

// ByTag resolves a tag slug to its active stickers. A missing tag or an
// empty association set short-circuits to an empty list.
func (r *stickerRepository) ByTag(ctx context.Context, tagSlug string) ([]*domain.StickerWithTags, error) {
	var tagID uuid.UUID
	err := r.db.QueryRowContext(ctx, "SELECT id FROM tags WHERE slug = $1", tagSlug).Scan(&tagID)
	if err != nil {
		if err == sql.ErrNoRows {
			return []*domain.StickerWithTags{}, nil
		}
		return nil, fmt.Errorf("failed to resolve tag: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM stickers
		WHERE status = 'active'
		  AND id IN (SELECT sticker_id FROM sticker_tags WHERE tag_id = $1)
	`, stickerColumns)

	stickers, err := r.queryStickers(ctx, query, tagID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stickers by tag: %w", err)
	}
	return r.attachTags(ctx, stickers)
}

// Stats summarizes the inventory for the admin dashboard.
func (r *stickerRepository) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'active'),
			COUNT(*) FILTER (WHERE status = 'draft'),
			COUNT(*) FILTER (WHERE status = 'active' AND stock < $1)
		FROM stickers
	`

	stats := &domain.DashboardStats{}
	err := r.db.QueryRowContext(ctx, query, domain.LowStockThreshold).Scan(
		&stats.Total, &stats.Active, &stats.Draft, &stats.LowStock,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}
	return stats, nil
}

// Create inserts a new sticker row.
func (r *stickerRepository) Create(ctx context.Context, sticker *domain.Sticker) error {
	query := `
		INSERT INTO stickers (id, model_number, name_es, name_en, description_es, description_en,
			slug, product_type, base_type, price_ars, stock, image_url, image_path,
			status, is_featured, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		sticker.ID,
		sticker.ModelNumber,
		sticker.NameES,
		sticker.NameEN,
		sticker.DescriptionES,
		sticker.DescriptionEN,
		sticker.Slug,
		sticker.ProductType,
		sticker.BaseType,
		sticker.PriceARS,
		sticker.Stock,
		sticker.ImageURL,
		sticker.ImagePath,
		sticker.Status,
		sticker.IsFeatured,
		sticker.SortOrder,
		sticker.CreatedAt,
		sticker.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create sticker: %w", err)
	}

	return nil
}

// Update applies a partial field set and returns the updated row. Only the
// non-nil fields of update are written; updated_at always advances.
func (r *stickerRepository) Update(ctx context.Context, id uuid.UUID, update domain.StickerUpdate) (*domain.Sticker, error) {
	sets := []string{}
	args := []interface{}{id}
	argIndex := 2

	set := func(column string, value interface{}) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if update.ModelNumber != nil {
		set("model_number", *update.ModelNumber)
	}
	if update.NameES != nil {
		set("name_es", *update.NameES)
	}
	if update.NameEN != nil {
		set("name_en", *update.NameEN)
	}
	if update.DescriptionES != nil {
		set("description_es", *update.DescriptionES)
	}
	if update.DescriptionEN != nil {
		set("description_en", *update.DescriptionEN)
	}
	if update.Slug != nil {
		set("slug", *update.Slug)
	}
	if update.ProductType != nil {
		set("product_type", *update.ProductType)
	}
	if update.BaseType != nil {
		set("base_type", *update.BaseType)
	}
	if update.PriceARS != nil {
		set("price_ars", *update.PriceARS)
	}
	if update.Stock != nil {
		set("stock", *update.Stock)
	}
	if update.ImageURL != nil {
		set("image_url", *update.ImageURL)
	}
	if update.ImagePath != nil {
		set("image_path", *update.ImagePath)
	}
	if update.Status != nil {
		set("status", *update.Status)
	}
	if update.IsFeatured != nil {
		set("is_featured", *update.IsFeatured)
	}
	if update.SortOrder != nil {
		set("sort_order", *update.SortOrder)
	}

	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf(`
		UPDATE stickers
		SET %s
		WHERE id = $1
		RETURNING %s
	`, strings.Join(sets, ", "), stickerColumns)

	sticker := &domain.Sticker{}
	if err := scanSticker(r.db.QueryRowContext(ctx, query, args...), sticker); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrStickerNotFound
		}
		return nil, fmt.Errorf("failed to update sticker: %w", err)
	}

	return sticker, nil
}

// Delete removes a sticker row. Its tag associations go with it via the
// ON DELETE CASCADE constraint.
func (r *stickerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM stickers WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete sticker: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrStickerNotFound
	}

	return nil
}

// UpdateStock sets the stock for a single sticker.
func (r *stickerRepository) UpdateStock(ctx context.Context, id uuid.UUID, stock int) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE stickers SET stock = $2, updated_at = NOW() WHERE id = $1", id, stock)
	if err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrStickerNotFound
	}

	return nil
}

func (r *stickerRepository) findOne(ctx context.Context, query string, arg interface{}) (*domain.StickerWithTags, error) {
	sticker := &domain.Sticker{}
	if err := scanSticker(r.db.QueryRowContext(ctx, query, arg), sticker); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrStickerNotFound
		}
		return nil, fmt.Errorf("failed to find sticker: %w", err)
	}

	withTags, err := r.attachTags(ctx, []*domain.Sticker{sticker})
	if err != nil {
		return nil, err
	}
	return withTags[0], nil
}

func (r *stickerRepository) queryStickers(ctx context.Context, query string, args ...interface{}) ([]*domain.Sticker, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stickers := []*domain.Sticker{}
	for rows.Next() {
		sticker := &domain.Sticker{}
		if err := scanSticker(rows, sticker); err != nil {
			return nil, fmt.Errorf("failed to scan sticker: %w", err)
		}
		stickers = append(stickers, sticker)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stickers: %w", err)
	}

	return stickers, nil
}

// attachTags resolves the full tag set for each sticker through one join
// query and maps rows to StickerWithTags. Every read path goes through this
// so the join reshaping lives in exactly one place.
func (r *stickerRepository) attachTags(ctx context.Context, stickers []*domain.Sticker) ([]*domain.StickerWithTags, error) {
	result := make([]*domain.StickerWithTags, len(stickers))
	if len(stickers) == 0 {
		return result, nil
	}

	placeholders := make([]string, len(stickers))
	args := make([]interface{}, len(stickers))
	for i, sticker := range stickers {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = sticker.ID
	}

	query := fmt.Sprintf(`
		SELECT st.sticker_id, t.id, t.name_es, t.name_en, t.slug, t.created_at
		FROM sticker_tags st
		JOIN tags t ON t.id = st.tag_id
		WHERE st.sticker_id IN (%s)
		ORDER BY t.name_es ASC
	`, strings.Join(placeholders, ", "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load sticker tags: %w", err)
	}
	defer rows.Close()

	tagsBySticker := make(map[uuid.UUID][]*domain.Tag)
	for rows.Next() {
		var stickerID uuid.UUID
		tag := &domain.Tag{}
		if err := rows.Scan(&stickerID, &tag.ID, &tag.NameES, &tag.NameEN, &tag.Slug, &tag.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sticker tag: %w", err)
		}
		tagsBySticker[stickerID] = append(tagsBySticker[stickerID], tag)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sticker tags: %w", err)
	}

	for i, sticker := range stickers {
		tags := tagsBySticker[sticker.ID]
		if tags == nil {
			tags = []*domain.Tag{}
		}
		result[i] = &domain.StickerWithTags{Sticker: *sticker, Tags: tags}
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSticker(row rowScanner, sticker *domain.Sticker) error {
	return row.Scan(
		&sticker.ID,
		&sticker.ModelNumber,
		&sticker.NameES,
		&sticker.NameEN,
		&sticker.DescriptionES,
		&sticker.DescriptionEN,
		&sticker.Slug,
		&sticker.ProductType,
		&sticker.BaseType,
		&sticker.PriceARS,
		&sticker.Stock,
		&sticker.ImageURL,
		&sticker.ImagePath,
		&sticker.Status,
		&sticker.IsFeatured,
		&sticker.SortOrder,
		&sticker.CreatedAt,
		&sticker.UpdatedAt,
	)
}
