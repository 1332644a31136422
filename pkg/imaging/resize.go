package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	ProfileMaxEdge = 512
	PostMaxEdge    = 1280
	jpegQuality    = 82
)

// Downscale decodes an image, fits it inside maxEdge x maxEdge keeping the
// aspect ratio and re-encodes it as JPEG. Images already small enough are
// re-encoded without scaling.
func Downscale(data []byte, maxEdge int) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image (format: %s): %w", format, err)
	}

	bounds := img.Bounds()
	newWidth, newHeight := fit(bounds.Dx(), bounds.Dy(), maxEdge)

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	// JPEG has no alpha; paint white first so transparent PNGs don't turn black
	draw.Draw(resized, resized.Bounds(), image.White, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}

func fit(width, height, maxEdge int) (int, int) {
	if maxEdge <= 0 || (width <= maxEdge && height <= maxEdge) {
		return width, height
	}
	if width >= height {
		h := int(float64(height) * float64(maxEdge) / float64(width))
		return maxEdge, max(h, 1)
	}
	w := int(float64(width) * float64(maxEdge) / float64(height))
	return max(w, 1), maxEdge
}
