package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"eventos-web/internal/api"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a test PNG image
func createTestPNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodedWidth(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, err := imaging.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestImageService_EventImage(t *testing.T) {
	ctx := context.Background()
	original := createTestPNG(t, 800, 400)

	t.Run("original when no width", func(t *testing.T) {
		backend := new(MockBackend)
		service := NewImageService(backend.bind())
		backend.On("GetEventImage", ctx, "ev-1", api.ImageBanner).Return(original, "image/png", nil)

		img, err := service.EventImage(ctx, "ev-1", api.ImageBanner, 0)
		require.NoError(t, err)
		assert.Equal(t, original, img.Data)
		assert.Equal(t, "image/png", img.ContentType)
		assert.False(t, img.Placeholder)
	})

	t.Run("resized keeping aspect ratio", func(t *testing.T) {
		backend := new(MockBackend)
		service := NewImageService(backend.bind())
		backend.On("GetEventImage", ctx, "ev-1", api.ImageBanner).Return(original, "image/png", nil)

		img, err := service.EventImage(ctx, "ev-1", api.ImageBanner, 200)
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", img.ContentType)

		w, h := decodedWidth(t, img.Data)
		assert.Equal(t, 200, w)
		assert.Equal(t, 100, h)
	})

	t.Run("never upscaled", func(t *testing.T) {
		backend := new(MockBackend)
		service := NewImageService(backend.bind())
		backend.On("GetEventImage", ctx, "ev-1", api.ImageSquare).Return(original, "image/png", nil)

		img, err := service.EventImage(ctx, "ev-1", api.ImageSquare, 1200)
		require.NoError(t, err)
		assert.Equal(t, original, img.Data)
	})

	t.Run("placeholder when missing", func(t *testing.T) {
		backend := new(MockBackend)
		service := NewImageService(backend.bind())
		backend.On("GetEventImage", ctx, "ev-2", api.ImageBanner).
			Return(nil, "", &api.Error{Kind: api.KindNotFound, StatusCode: 404})

		img, err := service.EventImage(ctx, "ev-2", api.ImageBanner, 600)
		require.NoError(t, err)
		assert.True(t, img.Placeholder)
		assert.Equal(t, "image/jpeg", img.ContentType)

		w, h := decodedWidth(t, img.Data)
		assert.Equal(t, 600, w)
		assert.Equal(t, 200, h)
	})

	t.Run("placeholder when undecodable", func(t *testing.T) {
		backend := new(MockBackend)
		service := NewImageService(backend.bind())
		backend.On("GetEventImage", ctx, "ev-3", api.ImageSquare).Return([]byte("not an image"), "image/png", nil)

		img, err := service.EventImage(ctx, "ev-3", api.ImageSquare, 100)
		require.NoError(t, err)
		assert.True(t, img.Placeholder)
	})

	t.Run("unknown kind", func(t *testing.T) {
		service := NewImageService(new(MockBackend).bind())
		_, err := service.EventImage(ctx, "ev-1", "poster", 0)
		assert.Error(t, err)
	})
}
