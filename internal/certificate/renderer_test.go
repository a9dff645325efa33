package certificate_test

import (
	"bytes"
	"context"
	"image/jpeg"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus-ticketing/internal/certificate"
)

const testFontPath = "../../fonts/OpenSans-Bold.ttf"

func TestImageRenderer_Render(t *testing.T) {
	if _, err := os.Stat(testFontPath); err != nil {
		t.Skipf("font asset not available at %s", testFontPath)
	}

	renderer := certificate.NewImageRenderer(testFontPath, 60, 90)

	data, err := renderer.Render(context.Background(), templatePNG(t), "Budi Santoso")
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err, "output must be a valid JPEG")
	assert.Equal(t, 400, img.Bounds().Dx())
	assert.Equal(t, 300, img.Bounds().Dy())
}

func TestImageRenderer_InvalidTemplate(t *testing.T) {
	renderer := certificate.NewImageRenderer(testFontPath, 60, 90)

	_, err := renderer.Render(context.Background(), []byte("not an image"), "Budi")
	assert.Error(t, err)
}

func TestImageRenderer_CancelledContext(t *testing.T) {
	if _, err := os.Stat(testFontPath); err != nil {
		t.Skipf("font asset not available at %s", testFontPath)
	}

	renderer := certificate.NewImageRenderer(testFontPath, 60, 90)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := renderer.Render(ctx, templatePNG(t), "Budi")
	assert.ErrorIs(t, err, context.Canceled)
}
