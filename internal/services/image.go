package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"

	"eventos-web/internal/api"
	"eventos-web/internal/logger"

	"github.com/disintegration/imaging"
)

// MaxImageWidth bounds the width a client may ask an image to be resized to
const MaxImageWidth = 1920

// placeholder sizes per image kind
var placeholderSizes = map[string]image.Point{
	api.ImageBanner: {X: 1200, Y: 400},
	api.ImageSquare: {X: 600, Y: 600},
}

var placeholderColor = color.NRGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 0xff}

// EventImage is an event image ready to be served
type EventImage struct {
	Data        []byte
	ContentType string
	Placeholder bool
}

// ImageService proxies event images from the backend
type ImageService struct {
	backend BackendFor
	quality int
}

// NewImageService creates a new image service
func NewImageService(backend BackendFor) *ImageService {
	return &ImageService{
		backend: backend,
		quality: 85,
	}
}

// EventImage fetches an event image, resized to width when width is positive
// and smaller than the original. Images that cannot be fetched or decoded are
// replaced by a generated placeholder.
func (s *ImageService) EventImage(ctx context.Context, eventID, kind string, width int) (*EventImage, error) {
	if _, ok := placeholderSizes[kind]; !ok {
		return nil, fmt.Errorf("unknown image type %q", kind)
	}
	if width < 0 || width > MaxImageWidth {
		width = 0
	}

	data, contentType, err := s.backend(nil).GetEventImage(ctx, eventID, kind)
	if err != nil {
		logger.Log.Warnw("serving placeholder image", "event_id", eventID, "kind", kind, "error", err)
		return s.placeholder(kind, width)
	}

	if width == 0 {
		return &EventImage{Data: data, ContentType: contentType}, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		logger.Log.Warnw("failed to decode event image", "event_id", eventID, "kind", kind, "error", err)
		return s.placeholder(kind, width)
	}

	if img.Bounds().Dx() <= width {
		return &EventImage{Data: data, ContentType: contentType}, nil
	}

	resized := imaging.Resize(img, width, 0, imaging.Lanczos)
	return s.encode(resized, false)
}

// placeholder renders a flat image with the proportions of the image kind
func (s *ImageService) placeholder(kind string, width int) (*EventImage, error) {
	size := placeholderSizes[kind]
	if width > 0 && width < size.X {
		size.Y = size.Y * width / size.X
		size.X = width
	}

	img := imaging.New(size.X, size.Y, placeholderColor)
	return s.encode(img, true)
}

func (s *ImageService) encode(img image.Image, placeholder bool) (*EventImage, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(s.quality)); err != nil {
		return nil, fmt.Errorf("failed to encode JPEG: %w", err)
	}
	return &EventImage{
		Data:        buf.Bytes(),
		ContentType: "image/jpeg",
		Placeholder: placeholder,
	}, nil
}
