package media

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
)

// Uploader stores media on the media host and returns its public URLs
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, kind Kind, publicID string) (*Result, error)
}

type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

type Result struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
	PublicID     string `json:"public_id"`
}

const (
	ThumbWidth = 200

	imageEager = "q_auto,f_auto,w_1080,c_limit"
	videoEager = "q_auto:low,f_auto,w_1280"
)

// ThumbnailURL builds a resized delivery URL for an uploaded image
func ThumbnailURL(cloudName, publicID string) string {
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/q_auto,f_auto,w_%d,c_fill/%s",
		cloudName, ThumbWidth, publicID)
}

type cloudinaryUploader struct {
	cloudName string
	folder    string
	api       *uploader.API
}

// NewCloudinary builds an Uploader that puts every asset under folder
func NewCloudinary(cloudName, apiKey, apiSecret, folder string) (Uploader, error) {
	cfg, err := config.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	api, err := uploader.NewWithConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	return &cloudinaryUploader{cloudName: cloudName, folder: folder, api: api}, nil
}

func (u *cloudinaryUploader) Upload(ctx context.Context, file io.Reader, kind Kind, publicID string) (*Result, error) {
	eagerAsync := false
	params := uploader.UploadParams{
		Folder:     u.folder,
		PublicID:   publicID,
		EagerAsync: &eagerAsync,
	}
	if kind == KindVideo {
		params.ResourceType = "video"
		params.Eager = videoEager
	} else {
		params.Eager = imageEager
	}

	res, err := u.api.Upload(ctx, file, params)
	if err != nil {
		return nil, err
	}
	if res.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary: %s", res.Error.Message)
	}

	out := &Result{URL: res.SecureURL, PublicID: res.PublicID}
	if kind == KindVideo {
		out.ThumbnailURL = fmt.Sprintf("https://res.cloudinary.com/%s/video/upload/so_0/%s.jpg", u.cloudName, res.PublicID)
	} else {
		out.ThumbnailURL = ThumbnailURL(u.cloudName, res.PublicID)
	}
	if len(res.Eager) > 0 && res.Eager[0].SecureURL != "" {
		out.URL = res.Eager[0].SecureURL
	}
	return out, nil
}
