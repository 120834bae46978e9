package imaging

import (
	"fmt"
	"image"
)

// foregroundThreshold is the cutoff above which a mask value counts as
// foreground. Strictly greater-than, so a value of exactly 0.5 is background.
const foregroundThreshold = 0.5

// Mask is a dense float32 raster aligned with an image. Values are
// typically binary (0 or 1) for predicted masks; logit masks reuse the
// same layout with signed values.
type Mask struct {
	Width  int
	Height int
	Data   []float32
}

// NewMask allocates a zero-filled mask of the given dimensions.
func NewMask(width, height int) *Mask {
	return &Mask{
		Width:  width,
		Height: height,
		Data:   make([]float32, width*height),
	}
}

// At returns the value at (x, y). The caller must keep coordinates in range.
func (m *Mask) At(x, y int) float32 {
	return m.Data[y*m.Width+x]
}

// Set stores v at (x, y).
func (m *Mask) Set(x, y int, v float32) {
	m.Data[y*m.Width+x] = v
}

// Foreground reports whether the pixel at (x, y) is foreground.
func (m *Mask) Foreground(x, y int) bool {
	return m.At(x, y) > foregroundThreshold
}

// Clone returns a deep copy of the mask.
func (m *Mask) Clone() *Mask {
	out := NewMask(m.Width, m.Height)
	copy(out.Data, m.Data)
	return out
}

// Area counts the foreground pixels.
func (m *Mask) Area() int {
	n := 0
	for _, v := range m.Data {
		if v > foregroundThreshold {
			n++
		}
	}
	return n
}

// Bounds is an inclusive pixel-coordinate bounding box.
type Bounds struct {
	X1, Y1, X2, Y2 int
}

// Array returns the box in [x1, y1, x2, y2] wire order.
func (b Bounds) Array() [4]int {
	return [4]int{b.X1, b.Y1, b.X2, b.Y2}
}

// Width returns the covered pixel width (inclusive extent).
func (b Bounds) Width() int { return b.X2 - b.X1 + 1 }

// Height returns the covered pixel height (inclusive extent).
func (b Bounds) Height() int { return b.Y2 - b.Y1 + 1 }

func (b Bounds) String() string {
	return fmt.Sprintf("[%d,%d,%d,%d]", b.X1, b.Y1, b.X2, b.Y2)
}

// Pad grows the box by pad pixels on every side, clamped to the image
// dimensions. A padded edge never leaves [0, dim-1].
func (b Bounds) Pad(pad, width, height int) Bounds {
	out := Bounds{
		X1: b.X1 - pad,
		Y1: b.Y1 - pad,
		X2: b.X2 + pad,
		Y2: b.Y2 + pad,
	}
	if out.X1 < 0 {
		out.X1 = 0
	}
	if out.Y1 < 0 {
		out.Y1 = 0
	}
	if out.X2 > width-1 {
		out.X2 = width - 1
	}
	if out.Y2 > height-1 {
		out.Y2 = height - 1
	}
	return out
}

// ForegroundBounds computes the tight bounding box over all foreground
// pixels. ok is false when the mask has no foreground at all.
func (m *Mask) ForegroundBounds() (bounds Bounds, ok bool) {
	minX, minY := m.Width, m.Height
	maxX, maxY := -1, -1
	for y := 0; y < m.Height; y++ {
		row := m.Data[y*m.Width : (y+1)*m.Width]
		for x, v := range row {
			if v <= foregroundThreshold {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			maxY = y
		}
	}
	if maxX < 0 {
		return Bounds{}, false
	}
	return Bounds{X1: minX, Y1: minY, X2: maxX, Y2: maxY}, true
}

// ToGray renders the mask as 8-bit grayscale, scaling values by 255 and
// clamping to [0, 255]. Binary masks render as pure black and white.
func (m *Mask) ToGray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, v := range m.Data {
		g := v * 255
		if g < 0 {
			g = 0
		} else if g > 255 {
			g = 255
		}
		img.Pix[i] = uint8(g)
	}
	return img
}
