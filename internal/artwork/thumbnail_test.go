package artwork

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"go.uber.org/zap"
)

// createTestJPEG generates an in-memory JPEG of the given dimensions
func createTestJPEG(t *testing.T, width, height int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, nil); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func createTestPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestSquareThumbnailer_Thumbnail(t *testing.T) {
	tests := []struct {
		name          string
		imageData     []byte
		size          int
		expectedError string
	}{
		{
			name:      "Success - Landscape Source",
			imageData: nil, // filled below: 400x200
			size:      128,
		},
		{
			name:      "Success - Portrait Source",
			imageData: nil, // filled below: 200x400
			size:      64,
		},
		{
			name:      "Success - PNG Source",
			imageData: nil, // filled below: 300x300
			size:      100,
		},
		{
			name:          "Error - Invalid Image Data",
			imageData:     []byte("definitely-not-an-image"),
			size:          128,
			expectedError: "failed to decode image",
		},
	}

	tests[0].imageData = createTestJPEG(t, 400, 200, color.RGBA{R: 255, A: 255})
	tests[1].imageData = createTestJPEG(t, 200, 400, color.RGBA{G: 255, A: 255})
	tests[2].imageData = createTestPNG(t, 300, 300)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			thumbnailer := NewSquareThumbnailer(zap.NewNop(), tt.size)
			result, err := thumbnailer.Thumbnail(context.Background(), tt.imageData)

			if tt.expectedError != "" {
				if err == nil {
					t.Fatalf("expected error containing '%s', got nil", tt.expectedError)
				}
				if !strings.Contains(err.Error(), tt.expectedError) {
					t.Errorf("expected error '%s' to contain '%s'", err.Error(), tt.expectedError)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			img, format, err := image.Decode(bytes.NewReader(result))
			if err != nil {
				t.Fatalf("result is not a valid image: %v", err)
			}
			if format != "jpeg" {
				t.Errorf("expected jpeg output, got %s", format)
			}
			bounds := img.Bounds()
			if bounds.Dx() != tt.size || bounds.Dy() != tt.size {
				t.Errorf("expected %dx%d, got %dx%d", tt.size, tt.size, bounds.Dx(), bounds.Dy())
			}
		})
	}
}

func TestSquareThumbnailer_DefaultSize(t *testing.T) {
	thumbnailer := NewSquareThumbnailer(zap.NewNop(), 0)
	if thumbnailer.size != defaultThumbnailSize {
		t.Errorf("expected default size %d, got %d", defaultThumbnailSize, thumbnailer.size)
	}
}
