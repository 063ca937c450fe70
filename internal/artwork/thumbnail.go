package artwork

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decode support

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

const defaultThumbnailSize = 300

// SquareThumbnailer downscales album art to a square JPEG thumbnail
// suitable for relaying to consumers
type SquareThumbnailer struct {
	logger *zap.Logger
	size   int
}

// NewSquareThumbnailer creates a thumbnailer producing size x size
// output; zero means the default 300 px
func NewSquareThumbnailer(logger *zap.Logger, size int) *SquareThumbnailer {
	if size <= 0 {
		size = defaultThumbnailSize
	}
	return &SquareThumbnailer{logger: logger, size: size}
}

// Thumbnail decodes the image, crops-and-fills it to a square and
// re-encodes it as JPEG
func (t *SquareThumbnailer) Thumbnail(ctx context.Context, imageData []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dy() == 0 || bounds.Dx() == 0 {
		return nil, fmt.Errorf("invalid image dimensions: %dx%d", bounds.Dx(), bounds.Dy())
	}

	thumb := imaging.Fill(img, t.size, t.size, imaging.Center, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, thumb, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	t.logger.Debug("Thumbnail generated",
		zap.Int("size", t.size),
		zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}
