package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// ErrEmptyMask is returned when a mask has no foreground pixels at all.
// The text is wire contract, do not reword.
var ErrEmptyMask = errors.New("Mask is empty")

// UnknownBackgroundModeError is returned for a background mode outside the
// supported set. The text is wire contract, do not reword.
type UnknownBackgroundModeError struct {
	Mode BackgroundMode
}

func (e *UnknownBackgroundModeError) Error() string {
	return fmt.Sprintf("Unknown background_mode: %s", e.Mode)
}

// BackgroundMode selects how pixels outside the mask are filled in a crop.
type BackgroundMode string

const (
	// BackgroundTransparent keeps original colors and writes the mask into
	// the alpha channel, so background pixels become fully transparent.
	BackgroundTransparent BackgroundMode = "transparent"

	// BackgroundWhite replaces background pixels with opaque white.
	BackgroundWhite BackgroundMode = "white"

	// BackgroundBlack replaces background pixels with opaque black.
	BackgroundBlack BackgroundMode = "black"

	// BackgroundOriginal keeps every pixel untouched; the mask only
	// determines the crop rectangle.
	BackgroundOriginal BackgroundMode = "original"
)

// CropResult is the outcome of a mask-guided crop.
type CropResult struct {
	// Image is the extracted region with the background mode applied.
	Image *image.NRGBA

	// Bounds is the padded, clamped bounding box in source coordinates.
	Bounds Bounds

	// Area is the number of foreground mask pixels inside Bounds.
	Area int
}

// ExtractCrop cuts the mask's bounding box out of img and fills the
// background according to mode.
//
// The box is the tight bounding rectangle of the mask's foreground, grown
// by padding pixels per side and clamped to the image. The empty-mask check
// runs before the mode is validated, so an empty mask wins over an unknown
// mode. The source image is never modified.
func ExtractCrop(img *image.NRGBA, mask *Mask, padding int, mode BackgroundMode) (*CropResult, error) {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	if mask.Width != w || mask.Height != h {
		return nil, fmt.Errorf("mask dimensions %dx%d do not match image %dx%d", mask.Width, mask.Height, w, h)
	}

	tight, ok := mask.ForegroundBounds()
	if !ok {
		return nil, ErrEmptyMask
	}
	box := tight.Pad(padding, w, h)

	// Inclusive box, exclusive rectangle.
	crop := imaging.Crop(img, image.Rect(box.X1, box.Y1, box.X2+1, box.Y2+1))

	area := 0
	for y := 0; y < box.Height(); y++ {
		for x := 0; x < box.Width(); x++ {
			if mask.Foreground(box.X1+x, box.Y1+y) {
				area++
			}
		}
	}

	switch mode {
	case BackgroundTransparent:
		applyBackground(crop, mask, box, func(pix []uint8) {
			pix[3] = 0
		})
	case BackgroundWhite:
		applyBackground(crop, mask, box, func(pix []uint8) {
			pix[0], pix[1], pix[2] = 0xff, 0xff, 0xff
		})
	case BackgroundBlack:
		applyBackground(crop, mask, box, func(pix []uint8) {
			pix[0], pix[1], pix[2] = 0, 0, 0
		})
	case BackgroundOriginal:
		// Plain rectangular crop.
	default:
		return nil, &UnknownBackgroundModeError{Mode: mode}
	}

	return &CropResult{Image: crop, Bounds: box, Area: area}, nil
}

// applyBackground runs fill over the RGBA bytes of every background pixel
// in the crop. box maps crop coordinates back to mask coordinates.
func applyBackground(crop *image.NRGBA, mask *Mask, box Bounds, fill func(pix []uint8)) {
	for y := 0; y < box.Height(); y++ {
		for x := 0; x < box.Width(); x++ {
			if mask.Foreground(box.X1+x, box.Y1+y) {
				continue
			}
			i := crop.PixOffset(x, y)
			fill(crop.Pix[i : i+4])
		}
	}
}

// SaveCrop writes img to path as PNG, creating parent directories as
// needed. The format is always PNG regardless of the path's extension.
func SaveCrop(img image.Image, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode crop: %w", err)
	}
	return f.Close()
}
