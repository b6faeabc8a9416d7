package artwork

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration
	"os"

	"golang.org/x/image/draw"
)

// downscaleFile shrinks the image at path so neither side exceeds maxSize,
// keeping the aspect ratio, and re-encodes it as JPEG. Images already within
// bounds are left untouched.
func downscaleFile(path string, maxSize int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	out, changed, err := downscale(data, maxSize)
	if err != nil || !changed {
		return err
	}

	return os.WriteFile(path, out, 0644)
}

func downscale(data []byte, maxSize int) ([]byte, bool, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode artwork: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= maxSize && height <= maxSize {
		return nil, false, nil
	}

	if width >= height {
		height = height * maxSize / width
		width = maxSize
	} else {
		width = width * maxSize / height
		height = maxSize
	}
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90}); err != nil {
		return nil, false, fmt.Errorf("failed to encode artwork: %w", err)
	}
	return buf.Bytes(), true, nil
}
