package transport

import (
	"errors"
	"net/http"

	"calcosnqn/internal/middleware"
	"calcosnqn/internal/repository"
	"calcosnqn/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateTagRequest represents the tag creation payload.
type CreateTagRequest struct {
	NameES string `json:"name_es" validate:"required"`
	NameEN string `json:"name_en" validate:"required"`
	Slug   string `json:"slug"`
}

// UpdateTagRequest represents the partial tag update payload.
type UpdateTagRequest struct {
	NameES *string `json:"name_es"`
	NameEN *string `json:"name_en"`
	Slug   *string `json:"slug"`
}

// TagHandler handles HTTP requests for tags.
type TagHandler struct {
	catalogService service.CatalogService
	stickerService service.StickerService
	logger         *zap.Logger
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(
	catalogService service.CatalogService,
	stickerService service.StickerService,
	logger *zap.Logger,
) *TagHandler {
	return &TagHandler{
		catalogService: catalogService,
		stickerService: stickerService,
		logger:         logger,
	}
}

// RegisterRoutes registers the public tag routes and the admin mutations.
func (h *TagHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/tags", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{slug}/stickers", h.Stickers)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware, adminMiddleware)
			r.Post("/", h.Create)
			r.Patch("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List serves every tag for the catalog filter bar.
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := h.catalogService.ListTags(r.Context())
	if err != nil {
		h.logger.Error("Failed to list tags", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list tags")
		return
	}
	middleware.RespondWithData(w, http.StatusOK, tags)
}

// Stickers serves the active stickers carrying a tag. An unknown slug yields
// an empty list.
func (h *TagHandler) Stickers(w http.ResponseWriter, r *http.Request) {
	stickers, err := h.catalogService.GetByTag(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.logger.Error("Failed to list stickers by tag", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list stickers")
		return
	}
	middleware.RespondWithData(w, http.StatusOK, stickers)
}

// Create handles tag creation.
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTagRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tag, err := h.stickerService.CreateTag(r.Context(), service.TagInput{
		NameES: req.NameES,
		NameEN: req.NameEN,
		Slug:   req.Slug,
	})
	if err != nil {
		h.respondServiceError(w, err, "failed to create tag")
		return
	}

	h.logger.Info("Tag created", zap.String("tag_id", tag.ID.String()))
	middleware.RespondWithData(w, http.StatusCreated, tag)
}

// Update handles a partial tag update.
func (h *TagHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid tag id")
		return
	}

	var req UpdateTagRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tag, err := h.stickerService.UpdateTag(r.Context(), id, repository.TagUpdate{
		NameES: req.NameES,
		NameEN: req.NameEN,
		Slug:   req.Slug,
	})
	if err != nil {
		h.respondServiceError(w, err, "failed to update tag")
		return
	}

	middleware.RespondWithData(w, http.StatusOK, tag)
}

// Delete handles tag deletion.
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid tag id")
		return
	}

	if err := h.stickerService.DeleteTag(r.Context(), id); err != nil {
		h.respondServiceError(w, err, "failed to delete tag")
		return
	}

	h.logger.Info("Tag deleted", zap.String("tag_id", id.String()))
	middleware.RespondWithData(w, http.StatusOK, map[string]string{"message": "tag deleted"})
}

func (h *TagHandler) respondServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case err == service.ErrUnauthorized:
		middleware.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
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
