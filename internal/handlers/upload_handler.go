package handlers

import (
	"net/http"
	"strings"

	"github.com/campusnet/backend/pkg/media"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	maxImageBytes = 10 << 20
	maxVideoBytes = 100 << 20
)

// UploadHandler forwards media to the media host
type UploadHandler struct {
	uploader media.Uploader
	log      zerolog.Logger
}

// NewUploadHandler accepts a nil uploader, in which case uploads answer 503
func NewUploadHandler(uploader media.Uploader, log zerolog.Logger) *UploadHandler {
	return &UploadHandler{uploader: uploader, log: log}
}

func (h *UploadHandler) RegisterUploadRoutes(g *echo.Group) {
	g.POST("/uploads", h.Upload)
}

// Upload takes a multipart "file" field and returns its hosted URLs
func (h *UploadHandler) Upload(c echo.Context) error {
	if h.uploader == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Media uploads are not configured")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing file field")
	}

	contentType := fh.Header.Get(echo.HeaderContentType)
	var kind media.Kind
	switch {
	case strings.HasPrefix(contentType, "image/"):
		kind = media.KindImage
		if fh.Size > maxImageBytes {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Image exceeds 10MB")
		}
	case strings.HasPrefix(contentType, "video/"):
		kind = media.KindVideo
		if fh.Size > maxVideoBytes {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "Video exceeds 100MB")
		}
	default:
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, "Only image and video uploads are supported")
	}

	file, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unreadable upload")
	}
	defer file.Close()

	publicID := uuid.NewString()
	res, err := h.uploader.Upload(c.Request().Context(), file, kind, publicID)
	if err != nil {
		h.log.Error().Err(err).Str("kind", string(kind)).Uint("user_id", getUserIDFromContext(c)).Msg("media upload failed")
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Media host rejected the upload")
	}
	return success(c, http.StatusCreated, res)
}
