package html2png

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// fitRegion enforces the output dimensions on a captured PNG.
// An exact match is returned untouched so reruns stay byte-identical.
// Oversized captures, as produced by some drivers on HiDPI surfaces, are
// cropped from the top-left corner. Anything smaller cannot be fixed.
func fitRegion(data []byte, region Region) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: decoding capture: %v", ErrCapture, err)
	}

	size := img.Bounds().Size()
	switch {
	case size.X == region.Width && size.Y == region.Height:
		return data, nil
	case size.X < region.Width || size.Y < region.Height:
		return nil, fmt.Errorf("%w: captured %dx%d, want %s", ErrCapture, size.X, size.Y, region)
	}

	cropped := imaging.Crop(img, image.Rect(0, 0, region.Width, region.Height))
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, cropped, imaging.PNG); err != nil {
		return nil, fmt.Errorf("%w: encoding capture: %v", ErrCapture, err)
	}
	return buf.Bytes(), nil
}
