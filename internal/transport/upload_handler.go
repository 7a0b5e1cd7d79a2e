package transport

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"calcosnqn/internal/auth"
	"calcosnqn/internal/middleware"
	"calcosnqn/internal/storage"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MaxUploadBytes caps uploaded images at 5 MiB.
const MaxUploadBytes = 5 << 20

var uploadExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// UploadResponse carries the stored object's public URL and bucket path.
type UploadResponse struct {
	ImageURL  string `json:"image_url"`
	ImagePath string `json:"image_path"`
}

// UploadHandler handles sticker image uploads.
type UploadHandler struct {
	storage storage.ObjectStorage
	folder  string
	logger  *zap.Logger
}

// NewUploadHandler creates a new UploadHandler. folder is the bucket folder
// uploads land under.
func NewUploadHandler(objectStorage storage.ObjectStorage, folder string, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		storage: objectStorage,
		folder:  strings.Trim(folder, "/"),
		logger:  logger,
	}
}

// RegisterRoutes registers the upload route behind the admin middleware.
func (h *UploadHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware, adminMiddleware)
		r.Post("/api/upload", h.Upload)
	})
}

// Upload stores a multipart image under <folder>/<timestamp>.<ext>. Oversized
// bodies and non-image content are rejected.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if !auth.IsAdmin(r.Context()) {
		middleware.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadBytes)
	if err := r.ParseMultipartForm(MaxUploadBytes); err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "file exceeds the 5MB limit")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer file.Close()

	if header.Size > MaxUploadBytes {
		middleware.RespondWithError(w, http.StatusBadRequest, "file exceeds the 5MB limit")
		return
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		middleware.RespondWithError(w, http.StatusBadRequest, "unreadable file")
		return
	}

	contentType := http.DetectContentType(head[:n])
	ext, ok := uploadExtensions[contentType]
	if !ok {
		middleware.RespondWithError(w, http.StatusBadRequest, "file must be a JPEG, PNG or WebP image")
		return
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		h.logger.Error("Failed to rewind upload", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	path := fmt.Sprintf("%s/%d.%s", h.folder, time.Now().UnixMilli(), ext)

	publicURL, err := h.storage.Save(r.Context(), path, contentType, file)
	if err != nil {
		h.logger.Error("Failed to store upload", zap.Error(err), zap.String("path", path))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to store file")
		return
	}

	h.logger.Info("Image uploaded", zap.String("path", path))
	middleware.RespondWithData(w, http.StatusCreated, UploadResponse{
		ImageURL:  publicURL,
		ImagePath: path,
	})
}
