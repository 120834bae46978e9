package colorseg

import (
	"context"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/croplabs/segmentd/internal/imaging"
	"github.com/croplabs/segmentd/internal/model"
)

// textTolerance is the L*a*b* radius around the prompted color.
const textTolerance = 0.15

// minInstanceArea drops speckle components smaller than this many pixels.
const minInstanceArea = 20

// colorVocabulary maps prompt words to sRGB hex values. Prompts may also
// carry a #RRGGBB literal directly.
var colorVocabulary = map[string]string{
	"red":     "#ff0000",
	"green":   "#008000",
	"blue":    "#0000ff",
	"yellow":  "#ffff00",
	"orange":  "#ffa500",
	"purple":  "#800080",
	"pink":    "#ffc0cb",
	"brown":   "#8b4513",
	"black":   "#000000",
	"white":   "#ffffff",
	"gray":    "#808080",
	"grey":    "#808080",
	"cyan":    "#00ffff",
	"magenta": "#ff00ff",
	"teal":    "#008080",
	"navy":    "#000080",
	"lime":    "#00ff00",
	"beige":   "#f5f5dc",
}

// resolvePrompt extracts a target color from a free-form prompt. The whole
// prompt is tried as a hex literal first, then each word against the
// vocabulary, first match wins.
func resolvePrompt(prompt string) (lab, bool) {
	prompt = strings.ToLower(strings.TrimSpace(prompt))
	if prompt == "" {
		return lab{}, false
	}

	if c, err := colorful.Hex(prompt); err == nil {
		return toLab(c), true
	}

	for _, word := range strings.Fields(prompt) {
		word = strings.Trim(word, ".,;:!?\"'")
		if hex, ok := colorVocabulary[word]; ok {
			c, err := colorful.Hex(hex)
			if err == nil {
				return toLab(c), true
			}
		}
		if strings.HasPrefix(word, "#") {
			if c, err := colorful.Hex(word); err == nil {
				return toLab(c), true
			}
		}
	}
	return lab{}, false
}

func toLab(c colorful.Color) lab {
	l, a, b := c.Lab()
	return lab{l: float32(l), a: float32(a), b: float32(b)}
}

// PredictFromText finds all connected regions whose color lies near the
// color named by the prompt. A prompt that names no known color is not an
// error: the result simply has zero instances. Instances are ordered by
// descending score.
func (m *Model) PredictFromText(ctx context.Context, state model.InferenceState, prompt string) (*model.TextResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	st, ok := state.(*imageState)
	if !ok {
		return nil, errInvalidState
	}

	target, ok := resolvePrompt(prompt)
	if !ok {
		return &model.TextResult{}, nil
	}

	n := len(st.pix)
	match := make([]bool, n)
	dist := make([]float64, n)
	for i, p := range st.pix {
		dist[i] = distance(p, target)
		match[i] = dist[i] <= textTolerance
	}

	type instance struct {
		mask  *imaging.Mask
		score float64
		box   model.Box
	}
	var instances []instance

	visited := make([]bool, n)
	var nbuf [4]int
	for i := 0; i < n; i++ {
		if !match[i] || visited[i] {
			continue
		}

		// Flood one 4-connected component.
		visited[i] = true
		queue := []int{i}
		mask := imaging.NewMask(st.width, st.height)
		var distSum float64
		for head := 0; head < len(queue); head++ {
			idx := queue[head]
			mask.Data[idx] = 1
			distSum += dist[idx]
			for _, nb := range st.neighbors4(idx, nbuf[:0]) {
				if match[nb] && !visited[nb] {
					visited[nb] = true
					queue = append(queue, nb)
				}
			}
		}

		area := len(queue)
		if area < minInstanceArea {
			continue
		}

		bounds, _ := mask.ForegroundBounds()
		score := 1 - (distSum/float64(area))/textTolerance
		if score < 0 {
			score = 0
		}
		if score > 1 {
			score = 1
		}
		instances = append(instances, instance{
			mask:  mask,
			score: score,
			box: model.Box{
				float64(bounds.X1), float64(bounds.Y1),
				float64(bounds.X2), float64(bounds.Y2),
			},
		})
	}

	sort.SliceStable(instances, func(a, b int) bool {
		return instances[a].score > instances[b].score
	})

	res := &model.TextResult{}
	for _, inst := range instances {
		res.Masks = append(res.Masks, inst.mask)
		res.Scores = append(res.Scores, inst.score)
		res.Boxes = append(res.Boxes, inst.box)
	}
	return res, nil
}
