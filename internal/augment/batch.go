package augment

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// BatchItem is one annotated source image. Batch box rows come from the
// annotation store in xywh form.
type BatchItem struct {
	ImagePath string      `json:"image_path"`
	Boxes     [][]float64 `json:"bboxes"`
	Labels    []string    `json:"labels"`
}

// BatchResult summarizes a batch run.
type BatchResult struct {
	ImagesGenerated int       `json:"images_generated"`
	TotalBoxes      int       `json:"total_bboxes"`
	Results         []*Result `json:"results"`
}

// Batch writes the requested number of randomized variations of every
// item into outputDir, naming each <stem>_aug_<n>_<ops>.jpg. Items that
// fail to augment are skipped; the summary counts only what was
// generated.
func Batch(items []BatchItem, enabledOps []string, variations int, outputDir string, rng *rand.Rand) (*BatchResult, error) {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	out := &BatchResult{Results: []*Result{}}
	for _, item := range items {
		stem := strings.TrimSuffix(filepath.Base(item.ImagePath), filepath.Ext(item.ImagePath))

		for i := 1; i <= variations; i++ {
			combo := RandomCombo(enabledOps, rng)
			name := fmt.Sprintf("%s_aug_%d_%s.jpg", stem, i, comboName(combo))

			res, err := Process(Request{
				ImagePath:  item.ImagePath,
				Boxes:      item.Boxes,
				BoxFormat:  "xywh",
				Labels:     item.Labels,
				Ops:        combo,
				OutputPath: filepath.Join(outputDir, name),
				Rand:       rng,
			})
			if err != nil {
				continue
			}

			res.SourceImage = item.ImagePath
			res.VariationIndex = i
			out.Results = append(out.Results, res)
			out.TotalBoxes += res.ResultBoxCount
		}
	}

	out.ImagesGenerated = len(out.Results)
	return out, nil
}

// comboName joins the sorted op names for the output filename, so the
// same combination always yields the same suffix regardless of apply
// order.
func comboName(combo []string) string {
	sorted := append([]string(nil), combo...)
	sort.Strings(sorted)
	return strings.Join(sorted, "_")
}

// Combo pools. Geometric candidates match when they extend an enabled
// op's family; color candidates match when an enabled op extends theirs.
var (
	comboGeometric = []string{"flip_h", "rotate_15", "rotate_30", "rotate_-15", "rotate_-30"}
	comboColor     = []string{"brightness", "contrast", "hue_saturation"}
)

/// RandomCombo picks a small random pipeline from the enabled op names:
// one or two geometric ops, one or two color ops, occasionally a blur.
// When nothing from the pools is enabled it falls back to the first two
// enabled ops.
func RandomCombo(enabled []string, rng *rand.Rand) []string {
	var selected []string

	var geo []string
	for _, g := range comboGeometric {
		for _, e := range enabled {
			if strings.HasPrefix(g, family(e)) {
				geo = append(geo, g)
				break
			}
		}
	}
	selected = append(selected, sample(geo, rng)...)

	var col []string
	for _, c := range comboColor {
		if contains(enabled, c) {
			col = append(col, c)
			continue
		}
		for _, e := range enabled {
			if strings.HasPrefix(e, family(c)) {
				col = append(col, c)
				break
			}
		}
	}
	selected = append(selected, sample(col, rng)...)

	if contains(enabled, "blur") && rng.Float64() < 0.3 {
		selected = append(selected, "blur")
	}

	if len(selected) == 0 {
		return append([]string(nil), enabled[:min(2, len(enabled))]...)
	}
	return selected
}

// sample picks one or two distinct entries in random order.
func sample(pool []string, rng *rand.Rand) []string {
	if len(pool) == 0 {
		return nil
	}
	k := min(rng.Intn(2)+1, len(pool))
	picked := make([]string, 0, k)
	for _, idx := range rng.Perm(len(pool))[:k] {
		picked = append(picked, pool[idx])
	}
	return picked
}

/// family is the part of an op name before the first underscore:
// rotate_30 and rotate_-15 are both family "rotate".
func family(name string) string {
	if i := strings.Index(name, "_"); i >= 0 {
		return name[:i]
	}
	return name
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
