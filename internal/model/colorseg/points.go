package colorseg

import (
	"context"
	"errors"
	"fmt"

	"github.com/croplabs/segmentd/internal/imaging"
	"github.com/croplabs/segmentd/internal/model"
)

// pointTolerances are the L*a*b* radii for the multimask candidates,
// tightest first. Single-mask predictions use the middle tier.
var pointTolerances = [3]float64{0.08, 0.14, 0.22}

var errNoForeground = errors.New("at least one foreground point is required")

// colorField holds the per-pixel click-distance precomputation shared by
// all tolerance tiers of one prediction.
type colorField struct {
	distFg   []float64 // distance to the nearest foreground click color
	bgCloser []bool    // true when some background click color is nearer
}

// PredictFromPoints grows one region per tolerance tier around the
// foreground clicks. Pixels join a region when they are 4-connected to a
// seed and their color stays within the tier's tolerance of the nearest
// foreground click, unless a background click color is closer. Prior
// logits contribute their positive pixels as extra growth seeds.
//
// Points and Labels must be the same length; the caller validates that.
func (m *Model) PredictFromPoints(ctx context.Context, state model.InferenceState, req model.PointRequest) (*model.PointResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	st, ok := state.(*imageState)
	if !ok {
		return nil, errInvalidState
	}

	var fgSeeds, bgSeeds []int
	for i, pt := range req.Points {
		x, y := int(pt.X), int(pt.Y)
		if !st.inBounds(x, y) {
			return nil, fmt.Errorf("point (%g, %g) is outside the %dx%d image", pt.X, pt.Y, st.width, st.height)
		}
		if req.Labels[i] == 0 {
			bgSeeds = append(bgSeeds, st.index(x, y))
		} else {
			fgSeeds = append(fgSeeds, st.index(x, y))
		}
	}
	if len(fgSeeds) == 0 {
		return nil, errNoForeground
	}

	starts := fgSeeds
	if req.PriorLogits != nil {
		if req.PriorLogits.Width != st.width || req.PriorLogits.Height != st.height {
			return nil, fmt.Errorf("prior logits are %dx%d, image is %dx%d",
				req.PriorLogits.Width, req.PriorLogits.Height, st.width, st.height)
		}
		starts = append(append([]int{}, fgSeeds...), positiveIndices(req.PriorLogits)...)
	}

	field := st.buildColorField(fgSeeds, bgSeeds)

	tiers := pointTolerances[:]
	if !req.Multimask {
		tiers = pointTolerances[1:2]
	}

	res := &model.PointResult{}
	for _, tol := range tiers {
		mask, score := st.growRegion(field, starts, tol)
		res.Masks = append(res.Masks, mask)
		res.Scores = append(res.Scores, score)
		res.Logits = append(res.Logits, field.logits(st.width, st.height, tol))
	}
	return res, nil
}

// positiveIndices returns the flat offsets of all strictly positive logit
// pixels.
func positiveIndices(logits *imaging.Mask) []int {
	var out []int
	for i, v := range logits.Data {
		if v > 0 {
			out = append(out, i)
		}
	}
	return out
}

// buildColorField computes, for every pixel, the distance to the nearest
// foreground click color and whether a background click color is strictly
// nearer.
func (s *imageState) buildColorField(fgSeeds, bgSeeds []int) *colorField {
	n := len(s.pix)
	field := &colorField{
		distFg:   make([]float64, n),
		bgCloser: make([]bool, n),
	}

	for i, p := range s.pix {
		best := distance(p, s.pix[fgSeeds[0]])
		for _, seed := range fgSeeds[1:] {
			if d := distance(p, s.pix[seed]); d < best {
				best = d
			}
		}
		field.distFg[i] = best

		for _, seed := range bgSeeds {
			if distance(p, s.pix[seed]) < best {
				field.bgCloser[i] = true
				break
			}
		}
	}
	return field
}

// growRegion floods outward from starts over pixels admitted by the
// tolerance, building the binary mask and its confidence score. The score
// is the mean tolerance margin of the region, so tight color matches score
// near 1.
func (s *imageState) growRegion(field *colorField, starts []int, tol float64) (*imaging.Mask, float64) {
	admit := func(idx int) bool {
		return field.distFg[idx] <= tol && !field.bgCloser[idx]
	}

	visited := make([]bool, len(s.pix))
	queue := make([]int, 0, len(starts))
	for _, idx := range starts {
		if !visited[idx] && admit(idx) {
			visited[idx] = true
			queue = append(queue, idx)
		}
	}

	mask := imaging.NewMask(s.width, s.height)
	var distSum float64
	count := 0
	var nbuf [4]int
	for head := 0; head < len(queue); head++ {
		idx := queue[head]
		mask.Data[idx] = 1
		distSum += field.distFg[idx]
		count++

		for _, nb := range s.neighbors4(idx, nbuf[:0]) {
			if !visited[nb] && admit(nb) {
				visited[nb] = true
				queue = append(queue, nb)
			}
		}
	}

	// Foreground clicks always admit themselves, so count is never zero.
	score := 1 - (distSum/float64(count))/tol
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return mask, score
}

// logits renders the signed tolerance margin per pixel, clamped to
// [-1, 1]. Background-dominated pixels are forced hard negative so they
// never re-seed a refinement.
func (f *colorField) logits(width, height int, tol float64) *imaging.Mask {
	out := imaging.NewMask(width, height)
	for i := range out.Data {
		if f.bgCloser[i] {
			out.Data[i] = -1
			continue
		}
		lg := (tol - f.distFg[i]) / tol
		if lg < -1 {
			lg = -1
		} else if lg > 1 {
			lg = 1
		}
		out.Data[i] = float32(lg)
	}
	return out
}
