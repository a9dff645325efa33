package certificate

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
)

// Renderer composites a participant's name onto a certificate template.
type Renderer interface {
	Render(ctx context.Context, template []byte, name string) ([]byte, error)
}

// ImageRenderer draws the name centered on the template in solid black
// bold type and re-encodes the result as JPEG.
type ImageRenderer struct {
	FontPath    string
	FontSize    float64
	JPEGQuality int
}

func NewImageRenderer(fontPath string, fontSize float64, jpegQuality int) *ImageRenderer {
	if fontSize <= 0 {
		fontSize = 60
	}
	if jpegQuality <= 0 {
		jpegQuality = 90
	}
	return &ImageRenderer{FontPath: fontPath, FontSize: fontSize, JPEGQuality: jpegQuality}
}

func (r *ImageRenderer) Render(ctx context.Context, template []byte, name string) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(template))
	if err != nil {
		return nil, fmt.Errorf("failed to decode template: %w", err)
	}

	dc := gg.NewContextForImage(img)

	if err := dc.LoadFontFace(r.FontPath, r.FontSize); err != nil {
		return nil, fmt.Errorf("failed to load font %s: %w", r.FontPath, err)
	}

	dc.SetRGB(0, 0, 0)
	w := float64(dc.Width())
	h := float64(dc.Height())
	dc.DrawStringAnchored(name, w/2, h/2, 0.5, 0.5)

	// An abandoned download should not pay for the encode.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dc.Image(), &jpeg.Options{Quality: r.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode certificate: %w", err)
	}

	return buf.Bytes(), nil
}
