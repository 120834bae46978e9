package colorseg

import (
	"context"
	"errors"
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/croplabs/segmentd/internal/model"
)

var errInvalidState = errors.New("inference state was not produced by this backend")

// Model is the color-similarity backend. The zero value is not usable;
// construct with New.
type Model struct{}

// New returns a ready-to-use backend. The backend itself is stateless;
// per-image data lives in the state returned by SetImage.
func New() *Model {
	return &Model{}
}

// lab is one pixel in L*a*b* space, stored compactly.
type lab struct {
	l, a, b float32
}

// imageState holds the per-image precomputation: every pixel converted to
// L*a*b* once, so predictions only do distance math.
type imageState struct {
	width  int
	height int
	pix    []lab
}

// SetImage converts img to L*a*b* and returns the handle predictions run
// against.
func (m *Model) SetImage(ctx context.Context, img *image.NRGBA) (model.InferenceState, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := img.Bounds()
	st := &imageState{
		width:  b.Dx(),
		height: b.Dy(),
		pix:    make([]lab, b.Dx()*b.Dy()),
	}

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			p := img.NRGBAAt(x, y)
			c := colorful.Color{
				R: float64(p.R) / 255,
				G: float64(p.G) / 255,
				B: float64(p.B) / 255,
			}
			l, a, bb := c.Lab()
			st.pix[i] = lab{l: float32(l), a: float32(a), b: float32(bb)}
			i++
		}
	}
	return st, nil
}

// distance is the Euclidean distance between two L*a*b* pixels, matching
// colorful.DistanceLab over the precomputed values.
func distance(p, q lab) float64 {
	dl := float64(p.l - q.l)
	da := float64(p.a - q.a)
	db := float64(p.b - q.b)
	return math.Sqrt(dl*dl + da*da + db*db)
}

// index returns the flat offset of (x, y).
func (s *imageState) index(x, y int) int {
	return y*s.width + x
}

// inBounds reports whether (x, y) is a valid pixel coordinate.
func (s *imageState) inBounds(x, y int) bool {
	return x >= 0 && x < s.width && y >= 0 && y < s.height
}

// neighbors4 appends the 4-connected neighbor offsets of idx to buf and
// returns it.
func (s *imageState) neighbors4(idx int, buf []int) []int {
	x := idx % s.width
	y := idx / s.width
	if x > 0 {
		buf = append(buf, idx-1)
	}
	if x < s.width-1 {
		buf = append(buf, idx+1)
	}
	if y > 0 {
		buf = append(buf, idx-s.width)
	}
	if y < s.height-1 {
		buf = append(buf, idx+s.width)
	}
	return buf
}
