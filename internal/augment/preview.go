package augment

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"math"
	"strconv"

	"github.com/disintegration/imaging"
)

// previewMaxSize bounds the longer preview edge. Previews are advisory;
// the host shows them inline while the full-size output goes to disk.
const previewMaxSize = 400

const previewJPEGQuality = 85

// Preview renders the image with its boxes outlined and numbered,
// downscaled to fit previewMaxSize, encoded as a base64 JPEG.
func Preview(img *image.NRGBA, boxes []Box) (string, error) {
	width := img.Bounds().Dx()
	height := img.Bounds().Dy()

	scale := 1.0
	if s := math.Min(previewMaxSize/float64(width), previewMaxSize/float64(height)); s < 1 {
		scale = s
	}

	canvas := imaging.Clone(img)
	if scale < 1 {
		canvas = imaging.Resize(img,
			int(float64(width)*scale), int(float64(height)*scale), imaging.Lanczos)
	}

	boxColor := color.NRGBA{0, 255, 0, 255}
	for i, b := range boxes {
		x1 := int(b[0] * scale)
		y1 := int(b[1] * scale)
		x2 := int(b[2] * scale)
		y2 := int(b[3] * scale)
		drawRect(canvas, x1, y1, x2, y2, 2, boxColor)
		drawLabel(canvas, x1, y1-8, strconv.Itoa(i+1), boxColor)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, canvas, imaging.JPEG, imaging.JPEGQuality(previewJPEGQuality)); err != nil {
		return "", fmt.Errorf("failed to encode preview: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// drawRect draws a rectangle outline of the given thickness, growing
// outward from the box edges. Pixels off the canvas are skipped.
func drawRect(img *image.NRGBA, x1, y1, x2, y2, thickness int, c color.NRGBA) {
	for t := 0; t < thickness; t++ {
		for x := x1 - t; x <= x2+t; x++ {
			setPixel(img, x, y1-t, c)
			setPixel(img, x, y2+t, c)
		}
		for y := y1 - t; y <= y2+t; y++ {
			setPixel(img, x1-t, y, c)
			setPixel(img, x2+t, y, c)
		}
	}
}

// drawLabel draws text with a simple 3x5 pixel digit font.
func drawLabel(img *image.NRGBA, x, y int, text string, c color.NRGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
	}

	const charWidth = 4
	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel == '1' {
					setPixel(img, cx+col, y+row, c)
				}
			}
		}
		cx += charWidth
	}
}

func setPixel(img *image.NRGBA, x, y int, c color.NRGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetNRGBA(x, y, c)
	}
}
