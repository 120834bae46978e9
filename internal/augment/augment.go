package augment

import (
	"errors"
	"fmt"
	"image"
	"math/rand"
	"strings"
	"time"
)

// ErrNoValidBoxes is returned when no input box survives clamping. The
// text goes to the host verbatim.
var ErrNoValidBoxes = errors.New("No valid bounding boxes")

// Box is a Pascal VOC bounding box: x1, y1, x2, y2 corner coordinates.
type Box [4]float64

// Width returns the horizontal extent.
func (b Box) Width() float64 { return b[2] - b[0] }

// Height returns the vertical extent.
func (b Box) Height() float64 { return b[3] - b[1] }

// Area returns the covered area in square pixels.
func (b Box) Area() float64 { return b.Width() * b.Height() }

// Boxes below these thresholds after the pipeline are dropped: under 30%
// of their original area, or under 100 square pixels.
const (
	minVisibility = 0.3
	minBoxArea    = 100.0
)

// Params configures one pipeline application.
type Params struct {
	// Ops are applied in order; unknown names are skipped.
	Ops []string

	// Intensity scales photometric op strength. Zero means the default 1.0.
	Intensity float64

	// Rand drives every random draw. Nil falls back to a time-seeded
	// source.
	Rand *rand.Rand
}

// Result is one augmented image with its surviving annotations. The
// JSON shape is what the host parses from the CLI.
type Result struct {
	Image *image.NRGBA `json:"-"`

	Width            int      `json:"width"`
	Height           int      `json:"height"`
	Boxes            []Box    `json:"bboxes"`
	Labels           []string `json:"labels"`
	Applied          []string `json:"augmentations_applied"`
	OriginalBoxCount int      `json:"original_bbox_count"`
	ResultBoxCount   int      `json:"result_bbox_count"`

	OutputPath    string `json:"output_path,omitempty"`
	PreviewBase64 string `json:"preview_base64,omitempty"`

	// Set by Batch for generated variations.
	SourceImage    string `json:"source_image,omitempty"`
	VariationIndex int    `json:"variation_index,omitempty"`
}

// Apply runs the op pipeline over the image and its boxes. Boxes are
// clamped to the canvas first; entries that collapse to nothing are
// dropped with their labels, and an input with no usable box at all is
// ErrNoValidBoxes. After every geometric op, boxes are clipped to the
// canvas and filtered by visibility and minimum area; a final pass
// catches undersized boxes even on photometric-only pipelines.
func Apply(img *image.NRGBA, boxes []Box, labels []string, p Params) (*Result, error) {
	intensity := p.Intensity
	if intensity == 0 {
		intensity = 1.0
	}
	rng := p.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	width := img.Bounds().Dx()
	height := img.Bounds().Dy()

	curBoxes, curLabels := sanitizeBoxes(boxes, labels, width, height)
	if len(curBoxes) == 0 {
		return nil, ErrNoValidBoxes
	}

	cur := img
	applied := make([]string, 0, len(p.Ops))
	for _, raw := range p.Ops {
		name := strings.ToLower(strings.TrimSpace(raw))
		next, nextBoxes, ok := applyOp(cur, curBoxes, name, intensity, rng)
		if !ok {
			continue
		}
		cur, curBoxes = next, nextBoxes
		if isSpatial(name) {
			curBoxes, curLabels = filterBoxes(curBoxes, curLabels, cur.Bounds().Dx(), cur.Bounds().Dy())
		}
		applied = append(applied, name)
	}
	curBoxes, curLabels = filterBoxes(curBoxes, curLabels, cur.Bounds().Dx(), cur.Bounds().Dy())

	return &Result{
		Image:            cur,
		Width:            cur.Bounds().Dx(),
		Height:           cur.Bounds().Dy(),
		Boxes:            curBoxes,
		Labels:           curLabels,
		Applied:          applied,
		OriginalBoxCount: len(boxes),
		ResultBoxCount:   len(curBoxes),
	}, nil
}

// isSpatial reports whether an op moves pixels, and with them the boxes.
func isSpatial(name string) bool {
	switch {
	case name == "flip_h" || name == "horizontal_flip":
		return true
	case name == "flip_v" || name == "vertical_flip":
		return true
	case strings.HasPrefix(name, "rotate") || strings.HasPrefix(name, "scale"):
		return true
	}
	return false
}

// filterBoxes clips each box to the canvas and drops it when the clip
// removed too much of it or left it too small, keeping labels paired.
func filterBoxes(boxes []Box, labels []string, width, height int) ([]Box, []string) {
	outBoxes := make([]Box, 0, len(boxes))
	outLabels := make([]string, 0, len(boxes))
	for i, b := range boxes {
		full := b.Area()
		if full <= 0 {
			continue
		}
		clipped := clipBox(b, width, height)
		area := clipped.Area()
		if area < minBoxArea || area/full < minVisibility {
			continue
		}
		outBoxes = append(outBoxes, clipped)
		outLabels = append(outLabels, labels[i])
	}
	return outBoxes, outLabels
}

// sanitizeBoxes clamps boxes to the canvas and drops the ones left with
// no extent, keeping labels paired by index. Extra boxes or labels
// beyond the shorter list are ignored.
func sanitizeBoxes(boxes []Box, labels []string, width, height int) ([]Box, []string) {
	n := min(len(boxes), len(labels))
	outBoxes := make([]Box, 0, n)
	outLabels := make([]string, 0, n)
	for i := 0; i < n; i++ {
		b := clipBox(boxes[i], width, height)
		if b[2] > b[0] && b[3] > b[1] {
			outBoxes = append(outBoxes, b)
			outLabels = append(outLabels, labels[i])
		}
	}
	return outBoxes, outLabels
}

// convertBoxes turns raw coordinate rows into corner-form boxes. Rows
// that are not 4 numbers long are dropped with their labels, mirroring
// how annotation exports with stray rows are handled upstream.
func convertBoxes(raw [][]float64, labels []string, format string) ([]Box, []string, error) {
	if format != "xyxy" && format != "xywh" {
		return nil, nil, fmt.Errorf("Unknown bbox format: %s", format)
	}
	n := min(len(raw), len(labels))
	boxes := make([]Box, 0, n)
	kept := make([]string, 0, n)
	for i := 0; i < n; i++ {
		r := raw[i]
		if len(r) != 4 {
			continue
		}
		b := Box{r[0], r[1], r[2], r[3]}
		if format == "xywh" {
			b = Box{r[0], r[1], r[0] + r[2], r[1] + r[3]}
		}
		boxes = append(boxes, b)
		kept = append(kept, labels[i])
	}
	return boxes, kept, nil
}
