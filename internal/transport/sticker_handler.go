package transport

import (
	"errors"
	"net/http"
	"strconv"

	"calcosnqn/internal/domain"
	"calcosnqn/internal/middleware"
	"calcosnqn/internal/repository"
	"calcosnqn/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateStickerRequest represents the sticker creation payload.
type CreateStickerRequest struct {
	ModelNumber   string      `json:"model_number" validate:"required"`
	NameES        string      `json:"name_es" validate:"required"`
	NameEN        string      `json:"name_en" validate:"required"`
	DescriptionES *string     `json:"description_es"`
	DescriptionEN *string     `json:"description_en"`
	Slug          string      `json:"slug"`
	ProductType   string      `json:"product_type" validate:"required,oneof=calco jarro iman"`
	BaseType      *string     `json:"base_type"`
	PriceARS      int64       `json:"price_ars" validate:"required,gt=0"`
	Stock         int         `json:"stock" validate:"gte=0"`
	ImageURL      *string     `json:"image_url"`
	ImagePath     *string     `json:"image_path"`
	Status        string      `json:"status"`
	IsFeatured    bool        `json:"is_featured"`
	SortOrder     int         `json:"sort_order"`
	TagIDs        []uuid.UUID `json:"tag_ids"`
}

// UpdateStickerRequest represents the partial sticker update payload. Absent
// fields are left untouched; tag_ids present (even empty) rewrites the
// associations.
type UpdateStickerRequest struct {
	ModelNumber   *string      `json:"model_number"`
	NameES        *string      `json:"name_es"`
	NameEN        *string      `json:"name_en"`
	DescriptionES *string      `json:"description_es"`
	DescriptionEN *string      `json:"description_en"`
	Slug          *string      `json:"slug"`
	ProductType   *string      `json:"product_type"`
	BaseType      *string      `json:"base_type"`
	PriceARS      *int64       `json:"price_ars"`
	Stock         *int         `json:"stock"`
	ImageURL      *string      `json:"image_url"`
	ImagePath     *string      `json:"image_path"`
	Status        *string      `json:"status"`
	IsFeatured    *bool        `json:"is_featured"`
	SortOrder     *int         `json:"sort_order"`
	TagIDs        *[]uuid.UUID `json:"tag_ids"`
}

// UpdateStockRequest represents the bulk stock update payload.
type UpdateStockRequest struct {
	Updates []domain.StockUpdate `json:"updates" validate:"required,min=1"`
}

// StickerHandler handles HTTP requests for the catalog and the admin
// sticker mutations.
type StickerHandler struct {
	catalogService service.CatalogService
	stickerService service.StickerService
	logger         *zap.Logger
}

// NewStickerHandler creates a new StickerHandler.
func NewStickerHandler(
	catalogService service.CatalogService,
	stickerService service.StickerService,
	logger *zap.Logger,
) *StickerHandler {
	return &StickerHandler{
		catalogService: catalogService,
		stickerService: stickerService,
		logger:         logger,
	}
}

// RegisterRoutes registers the public catalog routes and the admin routes.
func (h *StickerHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/stickers", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/featured", h.Featured)
		r.Get("/{id}", h.Get)
		r.Get("/{id}/related", h.Related)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware, adminMiddleware)
			r.Post("/", h.Create)
			r.Patch("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware, adminMiddleware)
		r.Get("/stickers", h.ListAdmin)
		r.Get("/stats", h.Stats)
		r.Put("/stock", h.UpdateStock)
	})
}

// List serves the filtered, sorted, paginated public catalog.
func (h *StickerHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := parseCatalogFilter(r)

	stickers, total, err := h.catalogService.GetStickers(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list stickers", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list stickers")
		return
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}

	middleware.RespondWithMeta(w, http.StatusOK, stickers, middleware.Meta{
		Total: total,
		Page:  page,
		Limit: domain.ItemsPerPage,
	})
}

// Get serves one active sticker, addressed by id or slug.
func (h *StickerHandler) Get(w http.ResponseWriter, r *http.Request) {
	param := chi.URLParam(r, "id")

	var sticker *domain.StickerWithTags
	var err error
	if id, parseErr := uuid.Parse(param); parseErr == nil {
		sticker, err = h.catalogService.GetStickerByID(r.Context(), id)
	} else {
		sticker, err = h.catalogService.GetStickerBySlug(r.Context(), param)
	}

	if err != nil {
		if err == repository.ErrStickerNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "sticker not found")
			return
		}
		h.logger.Error("Failed to get sticker", zap.Error(err), zap.String("id", param))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get sticker")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, sticker)
}

// Featured serves the home page featured block.
func (h *StickerHandler) Featured(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithData(w, http.StatusOK, h.catalogService.GetFeatured(r.Context()))
}

// Related serves up to 4 stickers sharing a tag with the given one. Lookup
// failures render an empty block rather than an error.
func (h *StickerHandler) Related(w http.ResponseWriter, r *http.Request) {
	param := chi.URLParam(r, "id")

	var sticker *domain.StickerWithTags
	var err error
	if id, parseErr := uuid.Parse(param); parseErr == nil {
		sticker, err = h.catalogService.GetStickerByID(r.Context(), id)
	} else {
		sticker, err = h.catalogService.GetStickerBySlug(r.Context(), param)
	}

	if err != nil {
		if err == repository.ErrStickerNotFound {
			middleware.RespondWithError(w, http.StatusNotFound, "sticker not found")
			return
		}
		h.logger.Error("Failed to get sticker", zap.Error(err), zap.String("id", param))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to get sticker")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, h.catalogService.GetRelated(r.Context(), sticker))
}

// ListAdmin serves every sticker regardless of status.
func (h *StickerHandler) ListAdmin(w http.ResponseWriter, r *http.Request) {
	stickers, err := h.stickerService.ListAdmin(r.Context())
	if err != nil {
		h.respondServiceError(w, err, "failed to list stickers")
		return
	}
	middleware.RespondWithData(w, http.StatusOK, stickers)
}

// Stats serves the admin dashboard inventory summary.
func (h *StickerHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stickerService.Stats(r.Context())
	if err != nil {
		h.respondServiceError(w, err, "failed to load stats")
		return
	}
	middleware.RespondWithData(w, http.StatusOK, stats)
}

// Create handles sticker creation.
func (h *StickerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateStickerRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input := service.StickerInput{
		ModelNumber:   req.ModelNumber,
		NameES:        req.NameES,
		NameEN:        req.NameEN,
		DescriptionES: req.DescriptionES,
		DescriptionEN: req.DescriptionEN,
		Slug:          req.Slug,
		ProductType:   domain.ProductType(req.ProductType),
		PriceARS:      req.PriceARS,
		Stock:         req.Stock,
		ImageURL:      req.ImageURL,
		ImagePath:     req.ImagePath,
		Status:        domain.StickerStatus(req.Status),
		IsFeatured:    req.IsFeatured,
		SortOrder:     req.SortOrder,
		TagIDs:        req.TagIDs,
	}
	if req.BaseType != nil {
		baseType := domain.BaseType(*req.BaseType)
		input.BaseType = &baseType
	}

	sticker, err := h.stickerService.Create(r.Context(), input)
	if err != nil {
		h.respondServiceError(w, err, "failed to create sticker")
		return
	}

	h.logger.Info("Sticker created", zap.String("sticker_id", sticker.ID.String()))
	middleware.RespondWithData(w, http.StatusCreated, sticker)
}

// Update handles a partial sticker update.
func (h *StickerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid sticker id")
		return
	}

	var req UpdateStickerRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	update := domain.StickerUpdate{
		ModelNumber:   req.ModelNumber,
		NameES:        req.NameES,
		NameEN:        req.NameEN,
		DescriptionES: req.DescriptionES,
		DescriptionEN: req.DescriptionEN,
		Slug:          req.Slug,
		PriceARS:      req.PriceARS,
		Stock:         req.Stock,
		ImageURL:      req.ImageURL,
		ImagePath:     req.ImagePath,
		IsFeatured:    req.IsFeatured,
		SortOrder:     req.SortOrder,
		TagIDs:        req.TagIDs,
	}
	if req.ProductType != nil {
		productType := domain.ProductType(*req.ProductType)
		update.ProductType = &productType
	}
	if req.BaseType != nil {
		baseType := domain.BaseType(*req.BaseType)
		update.BaseType = &baseType
	}
	if req.Status != nil {
		status := domain.StickerStatus(*req.Status)
		update.Status = &status
	}

	sticker, err := h.stickerService.Update(r.Context(), id, update)
	if err != nil {
		h.respondServiceError(w, err, "failed to update sticker")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, sticker)
}

// Delete handles sticker deletion.
func (h *StickerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid sticker id")
		return
	}

	if err := h.stickerService.Delete(r.Context(), id); err != nil {
		h.respondServiceError(w, err, "failed to delete sticker")
		return
	}

	h.logger.Info("Sticker deleted", zap.String("sticker_id", id.String()))
	middleware.RespondWithData(w, http.StatusOK, map[string]string{"message": "sticker deleted"})
}

// UpdateStock handles the bulk stock update.
func (h *StickerHandler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	var req UpdateStockRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.stickerService.UpdateStock(r.Context(), req.Updates); err != nil {
		h.respondServiceError(w, err, "failed to update stock")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, map[string]string{"message": "stock updated"})
}

// respondServiceError maps service errors onto envelope responses.
func (h *StickerHandler) respondServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case err == service.ErrUnauthorized:
		middleware.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
	case err == repository.ErrStickerNotFound:
		middleware.RespondWithError(w, http.StatusNotFound, "sticker not found")
	case err == repository.ErrTagNotFound:
		middleware.RespondWithError(w, http.StatusNotFound, "tag not found")
	case err == repository.ErrTagAlreadyExists:
		middleware.RespondWithError(w, http.StatusConflict, "tag with this slug already exists")
	default:
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			middleware.RespondWithError(w, http.StatusBadRequest, validationErr.Message)
			return
		}
		h.logger.Error("Request failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}

// parseCatalogFilter reads the catalog query parameters.
func parseCatalogFilter(r *http.Request) domain.CatalogFilter {
	q := r.URL.Query()

	page := 1
	if raw := q.Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}

	return domain.CatalogFilter{
		Search:      q.Get("search"),
		TagSlug:     q.Get("tag"),
		ProductType: domain.ProductType(q.Get("product_type")),
		BaseType:    domain.BaseType(q.Get("base_type")),
		Sort:        domain.SortKey(q.Get("sort")),
		Page:        page,
	}
}
