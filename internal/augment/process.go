package augment

import (
	"fmt"
	"image"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	segimaging "github.com/croplabs/segmentd/internal/imaging"
)

const outputJPEGQuality = 95

// Request describes one single-image augmentation: where the image is,
// its annotations, the pipeline to run, and optionally where to save the
// result.
type Request struct {
	ImagePath string

	// Boxes holds raw coordinate rows in BoxFormat: "xyxy" corner
	// coordinates (the default) or "xywh".
	Boxes     [][]float64
	BoxFormat string
	Labels    []string

	Ops       []string
	Intensity float64

	// OutputPath saves the augmented image when non-empty; the format
	// follows the file extension.
	OutputPath string

	Rand *rand.Rand
}

// Process runs the full single-image flow: load, convert and clamp the
// boxes, apply the pipeline, save when asked, and render the preview.
func Process(req Request) (*Result, error) {
	img, err := segimaging.Load(req.ImagePath)
	if err != nil {
		return nil, err
	}

	format := req.BoxFormat
	if format == "" {
		format = "xyxy"
	}
	boxes, labels, err := convertBoxes(req.Boxes, req.Labels, format)
	if err != nil {
		return nil, err
	}

	res, err := Apply(img, boxes, labels, Params{
		Ops:       req.Ops,
		Intensity: req.Intensity,
		Rand:      req.Rand,
	})
	if err != nil {
		return nil, err
	}
	res.OriginalBoxCount = len(req.Boxes)

	if req.OutputPath != "" {
		if err := saveImage(res.Image, req.OutputPath); err != nil {
			return nil, err
		}
		res.OutputPath = req.OutputPath
	}

	preview, err := Preview(res.Image, res.Boxes)
	if err != nil {
		return nil, err
	}
	res.PreviewBase64 = preview

	return res, nil
}

// saveImage writes the image in the format its extension names, creating
// parent directories as needed.
func saveImage(img *image.NRGBA, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := imaging.Save(img, path, imaging.JPEGQuality(outputJPEGQuality)); err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}
	return nil
}
