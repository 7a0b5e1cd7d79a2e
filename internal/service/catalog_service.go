package service

import (
	"context"
	"encoding/json"
	"fmt"

	"calcosnqn/internal/cache"
	"calcosnqn/internal/domain"
	"calcosnqn/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogService serves the public storefront reads. Home-page blocks
// (featured, related) swallow errors and render empty rather than failing the
// surrounding page.
type CatalogService interface {
	GetStickers(ctx context.Context, filter domain.CatalogFilter) ([]*domain.StickerWithTags, int, error)
	GetStickerBySlug(ctx context.Context, slug string) (*domain.StickerWithTags, error)
	GetStickerByID(ctx context.Context, id uuid.UUID) (*domain.StickerWithTags, error)
	GetFeatured(ctx context.Context) []*domain.StickerWithTags
	GetRelated(ctx context.Context, sticker *domain.StickerWithTags) []*domain.StickerWithTags
	GetByTag(ctx context.Context, tagSlug string) ([]*domain.StickerWithTags, error)
	ListTags(ctx context.Context) ([]*domain.Tag, error)
}

type catalogService struct {
	stickerRepo repository.StickerRepository
	tagRepo     repository.TagRepository
	cache       *cache.CatalogCache
	logger      *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(
	stickerRepo repository.StickerRepository,
	tagRepo repository.TagRepository,
	catalogCache *cache.CatalogCache,
	logger *zap.Logger,
) CatalogService {
	return &catalogService{
		stickerRepo: stickerRepo,
		tagRepo:     tagRepo,
		cache:       catalogCache,
		logger:      logger,
	}
}

// cachedPage is the serialized form of one catalog page.
type cachedPage struct {
	Items []*domain.StickerWithTags `json:"items"`
	Total int                       `json:"total"`
}

// GetStickers runs the catalog filter, consulting the page cache first. Cache
// failures fall through to the database.
func (s *catalogService) GetStickers(ctx context.Context, filter domain.CatalogFilter) ([]*domain.StickerWithTags, int, error) {
	if s.cache != nil {
		if data := s.cache.GetPage(ctx, filter); data != nil {
			var page cachedPage
			if err := json.Unmarshal(data, &page); err == nil {
				return page.Items, page.Total, nil
			}
			s.logger.Warn("Discarding malformed catalog cache entry")
		}
	}

	items, total, err := s.stickerRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get stickers: %w", err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(cachedPage{Items: items, Total: total}); err == nil {
			s.cache.SetPage(ctx, filter, data)
		}
	}

	return items, total, nil
}

// GetStickerBySlug retrieves one active sticker for the product page.
func (s *catalogService) GetStickerBySlug(ctx context.Context, slug string) (*domain.StickerWithTags, error) {
	sticker, err := s.stickerRepo.FindActiveBySlug(ctx, slug)
	if err != nil {
		if err == repository.ErrStickerNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get sticker by slug: %w", err)
	}
	return sticker, nil
}

// GetStickerByID retrieves one sticker by id. Non-active stickers are hidden
// from the public surface.
func (s *catalogService) GetStickerByID(ctx context.Context, id uuid.UUID) (*domain.StickerWithTags, error) {
	sticker, err := s.stickerRepo.FindByID(ctx, id)
	if err != nil {
		if err == repository.ErrStickerNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get sticker by id: %w", err)
	}
	if sticker.Status != domain.StatusActive {
		return nil, repository.ErrStickerNotFound
	}
	return sticker, nil
}

// GetFeatured returns the featured block for the home page, empty on error.
func (s *catalogService) GetFeatured(ctx context.Context) []*domain.StickerWithTags {
	stickers, err := s.stickerRepo.Featured(ctx)
	if err != nil {
		s.logger.Warn("Failed to load featured stickers", zap.Error(err))
		return []*domain.StickerWithTags{}
	}
	return stickers
}

// GetRelated returns up to 4 stickers sharing a tag with the given one, empty
// on error.
func (s *catalogService) GetRelated(ctx context.Context, sticker *domain.StickerWithTags) []*domain.StickerWithTags {
	tagIDs := make([]uuid.UUID, len(sticker.Tags))
	for i, tag := range sticker.Tags {
		tagIDs[i] = tag.ID
	}

	related, err := s.stickerRepo.Related(ctx, sticker.ID, tagIDs)
	if err != nil {
		s.logger.Warn("Failed to load related stickers",
			zap.Error(err), zap.String("sticker_id", sticker.ID.String()))
		return []*domain.StickerWithTags{}
	}
	return related
}

// GetByTag returns the active stickers carrying a tag. A missing tag yields an
// empty list, not an error.
func (s *catalogService) GetByTag(ctx context.Context, tagSlug string) ([]*domain.StickerWithTags, error) {
	stickers, err := s.stickerRepo.ByTag(ctx, tagSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to get stickers by tag: %w", err)
	}
	return stickers, nil
}

// ListTags returns every tag for the catalog filter bar.
func (s *catalogService) ListTags(ctx context.Context) ([]*domain.Tag, error) {
	tags, err := s.tagRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}
