package model

import (
	"context"
	"image"

	"github.com/croplabs/segmentd/internal/imaging"
)

// InferenceState is the opaque per-image handle returned by SetImage and
// passed back on every prediction. Its concrete type belongs to the
// backend that produced it.
type InferenceState interface{}

// Point is a pixel coordinate with (0,0) at the top-left corner.
type Point struct {
	X float64
	Y float64
}

// Box is a rectangle in [x1, y1, x2, y2] pixel order.
type Box [4]float64

// PointRequest carries one point-prompted prediction.
type PointRequest struct {
	// Points are the click coordinates, parallel to Labels.
	Points []Point

	// Labels classify each point: 1 marks foreground, 0 background.
	// Other values are passed through for backends that assign them
	// meaning.
	Labels []int

	// Multimask asks for several candidate masks instead of one.
	Multimask bool

	// PriorLogits, when non-nil, is the logit mask of a previous
	// prediction for the same image, used for iterative refinement.
	PriorLogits *imaging.Mask
}

// PointResult is the outcome of a point-prompted prediction. Masks,
// Scores, and Logits are parallel and non-empty on success.
type PointResult struct {
	Masks  []*imaging.Mask
	Scores []float64
	Logits []*imaging.Mask
}

// TextResult is the outcome of a text-prompted prediction. Masks, Scores,
// and Boxes are parallel; all empty is a valid result meaning no instance
// matched the prompt.
type TextResult struct {
	Masks  []*imaging.Mask
	Scores []float64
	Boxes  []Box
}

// Model is a segmentation backend.
//
// SetImage runs whatever per-image precomputation the backend needs and
// returns the handle the predictions operate on. Both prediction calls are
// read-only with respect to the state, so one state can serve any number
// of predictions.
type Model interface {
	SetImage(ctx context.Context, img *image.NRGBA) (InferenceState, error)
	PredictFromPoints(ctx context.Context, state InferenceState, req PointRequest) (*PointResult, error)
	PredictFromText(ctx context.Context, state InferenceState, prompt string) (*TextResult, error)
}
