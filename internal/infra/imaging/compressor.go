package imaging

import (
	"bytes"
	"fmt"
	"image"
	"io"

	"github.com/disintegration/imaging"

	"tryonjewel-server/internal/config"
	"tryonjewel-server/internal/domain/ports/adapter"
)

// Compressor shrinks oversized uploads before they are transferred to
// object storage: resize the longest edge down to MaxDimension, then
// re-encode as JPEG stepping the quality down until the output fits under
// TargetBytes (or the quality floor is reached).
type Compressor struct {
	maxDimension int
	targetBytes  int64
}

func NewCompressor(cfg config.UploadConfig) *Compressor {
	return &Compressor{
		maxDimension: cfg.MaxDimension,
		targetBytes:  cfg.TargetBytes,
	}
}

func (c *Compressor) Compress(r io.Reader) (*adapter.CompressedImage, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	img = c.bound(img)
	b := img.Bounds()

	for _, quality := range []int{90, 80, 70, 60, 50} {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			return nil, fmt.Errorf("encode jpeg: %w", err)
		}
		if int64(buf.Len()) <= c.targetBytes || quality == 50 {
			return &adapter.CompressedImage{
				Data:        buf.Bytes(),
				ContentType: "image/jpeg",
				Width:       b.Dx(),
				Height:      b.Dy(),
			}, nil
		}
	}
	// unreachable: the loop returns on its last iteration
	return nil, fmt.Errorf("compress image: no encoding produced")
}

func (c *Compressor) bound(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= c.maxDimension && h <= c.maxDimension {
		return img
	}
	if w >= h {
		return imaging.Resize(img, c.maxDimension, 0, imaging.Lanczos)
	}
	return imaging.Resize(img, 0, c.maxDimension, imaging.Lanczos)
}
