package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"calcosnqn/internal/auth"
	"calcosnqn/internal/cache"
	"calcosnqn/internal/domain"
	"calcosnqn/internal/i18n"
	"calcosnqn/internal/repository"
	"calcosnqn/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrUnauthorized is returned when a mutation is attempted without an admin
// identity on the context. The message doubles as the client-facing error.
var ErrUnauthorized = errors.New("Unauthorized")

// ValidationError carries the first human-readable rule violation found in a
// mutation payload.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

var modelNumberPattern = regexp.MustCompile(`^#\d{3,}$`)

// StickerInput is the payload for creating a sticker. Zero-valued optional
// fields fall back to defaults (draft status, zero stock and sort order).
type StickerInput struct {
	ModelNumber   string
	NameES        string
	NameEN        string
	DescriptionES *string
	DescriptionEN *string
	Slug          string
	ProductType   domain.ProductType
	BaseType      *domain.BaseType
	PriceARS      int64
	Stock         int
	ImageURL      *string
	ImagePath     *string
	Status        domain.StickerStatus
	IsFeatured    bool
	SortOrder     int
	TagIDs        []uuid.UUID
}

// TagInput is the payload for creating a tag. An empty slug is derived from
// the Spanish name.
type TagInput struct {
	NameES string
	NameEN string
	Slug   string
}

// StickerService is the admin mutation layer. Every method re-checks the
// caller's admin identity before touching data, and every successful mutation
// invalidates the catalog cache.
type StickerService interface {
	ListAdmin(ctx context.Context) ([]*domain.StickerWithTags, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.StickerWithTags, error)
	Stats(ctx context.Context) (*domain.DashboardStats, error)
	Create(ctx context.Context, input StickerInput) (*domain.StickerWithTags, error)
	Update(ctx context.Context, id uuid.UUID, update domain.StickerUpdate) (*domain.StickerWithTags, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UpdateStock(ctx context.Context, updates []domain.StockUpdate) error
	CreateTag(ctx context.Context, input TagInput) (*domain.Tag, error)
	UpdateTag(ctx context.Context, id uuid.UUID, update repository.TagUpdate) (*domain.Tag, error)
	DeleteTag(ctx context.Context, id uuid.UUID) error
}

type stickerService struct {
	stickerRepo    repository.StickerRepository
	tagRepo        repository.TagRepository
	stickerTagRepo repository.StickerTagRepository
	storage        storage.ObjectStorage
	cache          *cache.CatalogCache
	logger         *zap.Logger
}

// NewStickerService creates a new instance of StickerService.
func NewStickerService(
	stickerRepo repository.StickerRepository,
	tagRepo repository.TagRepository,
	stickerTagRepo repository.StickerTagRepository,
	objectStorage storage.ObjectStorage,
	catalogCache *cache.CatalogCache,
	logger *zap.Logger,
) StickerService {
	return &stickerService{
		stickerRepo:    stickerRepo,
		tagRepo:        tagRepo,
		stickerTagRepo: stickerTagRepo,
		storage:        objectStorage,
		cache:          catalogCache,
		logger:         logger,
	}
}

// ListAdmin returns every sticker regardless of status.
func (s *stickerService) ListAdmin(ctx context.Context) ([]*domain.StickerWithTags, error) {
	if !auth.IsAdmin(ctx) {
		return nil, ErrUnauthorized
	}
	return s.stickerRepo.ListAdmin(ctx)
}

// GetByID returns one sticker of any status.
func (s *stickerService) GetByID(ctx context.Context, id uuid.UUID) (*domain.StickerWithTags, error) {
	if !auth.IsAdmin(ctx) {
		return nil, ErrUnauthorized
	}
	return s.stickerRepo.FindByID(ctx, id)
}

// Stats returns the dashboard inventory summary.
func (s *stickerService) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	if !auth.IsAdmin(ctx) {
		return nil, ErrUnauthorized
	}
	return s.stickerRepo.Stats(ctx)
}

// Create validates the payload, inserts the sticker and its tag associations,
// and invalidates the catalog cache.
func (s *stickerService) Create(ctx context.Context, input StickerInput) (*domain.StickerWithTags, error) {
	if !auth.IsAdmin(ctx) {
		return nil, ErrUnauthorized
	}

	if input.Slug == "" {
		input.Slug = i18n.Slugify(input.NameES)
	}
	if input.Status == "" {
		input.Status = domain.StatusDraft
	}

	if err := validateStickerInput(input); err != nil {
		return nil, err
	}

	now := time.Now()
	sticker := &domain.Sticker{
		ID:            uuid.New(),
		ModelNumber:   input.ModelNumber,
		NameES:        input.NameES,
		NameEN:        input.NameEN,
		DescriptionES: input.DescriptionES,
		DescriptionEN: input.DescriptionEN,
		Slug:          input.Slug,
		ProductType:   input.ProductType,
		BaseType:      input.BaseType,
		PriceARS:      input.PriceARS,
		Stock:         input.Stock,
		ImageURL:      input.ImageURL,
		ImagePath:     input.ImagePath,
		Status:        input.Status,
		IsFeatured:    input.IsFeatured,
		SortOrder:     input.SortOrder,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.stickerRepo.Create(ctx, sticker); err != nil {
		return nil, fmt.Errorf("failed to create sticker: %w", err)
	}

	if err := s.stickerTagRepo.Insert(ctx, sticker.ID, input.TagIDs); err != nil {
		return nil, fmt.Errorf("failed to attach tags: %w", err)
	}

	s.cache.Invalidate(ctx)

	return s.stickerRepo.FindByID(ctx, sticker.ID)
}

// Update applies a partial field set. A non-nil TagIDs list, even an empty
// one, rewrites the tag associations wholesale; nil leaves them untouched.
func (s *stickerService) Update(ctx context.Context, id uuid.UUID, update domain.StickerUpdate) (*domain.StickerWithTags, error) {
	if !auth.IsAdmin(ctx) {
		return nil, ErrUnauthorized
	}

	if err := validateStickerUpdate(update); err != nil {
		return nil, err
	}

	if _, err := s.stickerRepo.Update(ctx, id, update); err != nil {
		return nil, err
	}

	if update.TagIDs != nil {
		if err := s.stickerTagRepo.Replace(ctx, id, *update.TagIDs); err != nil {
			return nil, fmt.Errorf("failed to rewrite tags: %w", err)
		}
	}

	s.cache.Invalidate(ctx)

	return s.stickerRepo.FindByID(ctx, id)
}

// Delete removes the stored image first, then the row. A storage failure is
// logged and does not block the delete.
func (s *stickerService) Delete(ctx context.Context, id uuid.UUID) error {
	if !auth.IsAdmin(ctx) {
		return ErrUnauthorized
	}

	sticker, err := s.stickerRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if sticker.ImagePath != nil && *sticker.ImagePath != "" {
		if err := s.storage.Remove(ctx, *sticker.ImagePath); err != nil {
			s.logger.Warn("Failed to remove sticker image",
				zap.Error(err), zap.String("path", *sticker.ImagePath))
		}
	}

	if err := s.stickerRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate(ctx)
	return nil
}

// UpdateStock applies the entries in order, one statement each. The batch is
// not transactional: a failure aborts the remainder and reports the offending
// id, but earlier entries stay applied.
func (s *stickerService) UpdateStock(ctx context.Context, updates []domain.StockUpdate) error {
	if !auth.IsAdmin(ctx) {
		return ErrUnauthorized
	}

	for _, u := range updates {
		if u.Stock < 0 {
			return validationErrorf("stock for %s must not be negative", u.ID)
		}
	}

	for _, u := range updates {
		if err := s.stickerRepo.UpdateStock(ctx, u.ID, u.Stock); err != nil {
			return fmt.Errorf("failed to update stock for %s: %w", u.ID, err)
		}
	}

	s.cache.Invalidate(ctx)
	return nil
}

// CreateTag inserts a new tag, deriving the slug from the Spanish name when
// absent.
func (s *stickerService) CreateTag(ctx context.Context, input TagInput) (*domain.Tag, error) {
	if !auth.IsAdmin(ctx) {
		return nil, ErrUnauthorized
	}

	if input.NameES == "" {
		return nil, validationErrorf("name_es must not be empty")
	}
	if input.NameEN == "" {
		return nil, validationErrorf("name_en must not be empty")
	}
	if input.Slug == "" {
		input.Slug = i18n.Slugify(input.NameES)
	}
	if input.Slug == "" {
		return nil, validationErrorf("slug must not be empty")
	}

	tag := &domain.Tag{
		ID:        uuid.New(),
		NameES:    input.NameES,
		NameEN:    input.NameEN,
		Slug:      input.Slug,
		CreatedAt: time.Now(),
	}

	if err := s.tagRepo.Create(ctx, tag); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	return tag, nil
}

// UpdateTag applies a partial field set to a tag.
func (s *stickerService) UpdateTag(ctx context.Context, id uuid.UUID, update repository.TagUpdate) (*domain.Tag, error) {
	if !auth.IsAdmin(ctx) {
		return nil, ErrUnauthorized
	}

	if update.NameES != nil && *update.NameES == "" {
		return nil, validationErrorf("name_es must not be empty")
	}
	if update.NameEN != nil && *update.NameEN == "" {
		return nil, validationErrorf("name_en must not be empty")
	}
	if update.Slug != nil && *update.Slug == "" {
		return nil, validationErrorf("slug must not be empty")
	}

	tag, err := s.tagRepo.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	return tag, nil
}

// DeleteTag removes a tag; the cascade prunes its sticker associations.
func (s *stickerService) DeleteTag(ctx context.Context, id uuid.UUID) error {
	if !auth.IsAdmin(ctx) {
		return ErrUnauthorized
	}

	if err := s.tagRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate(ctx)
	return nil
}

// validateStickerInput checks the creation payload and reports the first
// violation.
func validateStickerInput(input StickerInput) error {
	if !modelNumberPattern.MatchString(input.ModelNumber) {
		return validationErrorf("model_number must look like #123")
	}
	if input.NameES == "" {
		return validationErrorf("name_es must not be empty")
	}
	if input.NameEN == "" {
		return validationErrorf("name_en must not be empty")
	}
	if input.Slug == "" {
		return validationErrorf("slug must not be empty")
	}
	if !input.ProductType.Valid() {
		return validationErrorf("product_type must be one of calco, jarro, iman")
	}
	if input.BaseType != nil && !input.BaseType.Valid() {
		return validationErrorf("base_type must be base_blanca or base_holografica")
	}
	if input.PriceARS <= 0 {
		return validationErrorf("price_ars must be greater than zero")
	}
	if input.Stock < 0 {
		return validationErrorf("stock must not be negative")
	}
	if !input.Status.Valid() {
		return validationErrorf("status must be one of draft, active, archived")
	}
	if input.ImageURL != nil && *input.ImageURL != "" {
		if _, err := url.ParseRequestURI(*input.ImageURL); err != nil {
			return validationErrorf("image_url must be a valid URL")
		}
	}
	return nil
}

// validateStickerUpdate checks only the fields present in a partial update.
func validateStickerUpdate(update domain.StickerUpdate) error {
	if update.ModelNumber != nil && !modelNumberPattern.MatchString(*update.ModelNumber) {
		return validationErrorf("model_number must look like #123")
	}
	if update.NameES != nil && *update.NameES == "" {
		return validationErrorf("name_es must not be empty")
	}
	if update.NameEN != nil && *update.NameEN == "" {
		return validationErrorf("name_en must not be empty")
	}
	if update.Slug != nil && *update.Slug == "" {
		return validationErrorf("slug must not be empty")
	}
	if update.ProductType != nil && !update.ProductType.Valid() {
		return validationErrorf("product_type must be one of calco, jarro, iman")
	}
	if update.BaseType != nil && *update.BaseType != "" && !update.BaseType.Valid() {
		return validationErrorf("base_type must be base_blanca or base_holografica")
	}
	if update.PriceARS != nil && *update.PriceARS <= 0 {
		return validationErrorf("price_ars must be greater than zero")
	}
	if update.Stock != nil && *update.Stock < 0 {
		return validationErrorf("stock must not be negative")
	}
	if update.Status != nil && !update.Status.Valid() {
		return validationErrorf("status must be one of draft, active, archived")
	}
	if update.ImageURL != nil && *update.ImageURL != "" {
		if _, err := url.ParseRequestURI(*update.ImageURL); err != nil {
			return validationErrorf("image_url must be a valid URL")
		}
	}
	return nil
}
