// Package modeltest provides a scriptable model.Model for tests.
//
// The zero behaviors are deterministic: SetImage hands out a State carrying
// the image dimensions, point predictions return fixed rectangle masks with
// fixed scores, text predictions return two rectangle instances. Tests that
// need specific behavior assign the corresponding hook.
package modeltest

import (
	"context"
	"fmt"
	"image"

	"github.com/croplabs/segmentd/internal/imaging"
	"github.com/croplabs/segmentd/internal/model"
)

// State is the opaque handle the fake returns from SetImage.
type State struct {
	Width  int
	Height int
}

// Model implements model.Model with overridable hooks and call capture.
type Model struct {
	SetImageFunc func(ctx context.Context, img *image.NRGBA) (model.InferenceState, error)
	PointsFunc   func(ctx context.Context, state model.InferenceState, req model.PointRequest) (*model.PointResult, error)
	TextFunc     func(ctx context.Context, state model.InferenceState, prompt string) (*model.TextResult, error)

	SetImageCalls int
	PointsCalls   int
	TextCalls     int

	LastPointRequest model.PointRequest
	LastPrompt       string
}

// New returns a fake running on its default behaviors.
func New() *Model {
	return &Model{}
}

// RectMask builds a width x height mask whose foreground is the inclusive
// rectangle (x1,y1)-(x2,y2), clipped to the mask.
func RectMask(width, height, x1, y1, x2, y2 int) *imaging.Mask {
	m := imaging.NewMask(width, height)
	for y := max(y1, 0); y <= min(y2, height-1); y++ {
		for x := max(x1, 0); x <= min(x2, width-1); x++ {
			m.Set(x, y, 1)
		}
	}
	return m
}

func (f *Model) SetImage(ctx context.Context, img *image.NRGBA) (model.InferenceState, error) {
	f.SetImageCalls++
	if f.SetImageFunc != nil {
		return f.SetImageFunc(ctx, img)
	}
	return &State{Width: img.Bounds().Dx(), Height: img.Bounds().Dy()}, nil
}

// PredictFromPoints returns three candidates under Multimask (scores 0.5,
// 0.9, 0.7, so the second is best) and one otherwise. Each candidate's
// logit mask is filled with its 1-based index inside the rectangle, which
// lets tests identify exactly which logits a caller kept.
func (f *Model) PredictFromPoints(ctx context.Context, state model.InferenceState, req model.PointRequest) (*model.PointResult, error) {
	f.PointsCalls++
	f.LastPointRequest = req
	if f.PointsFunc != nil {
		return f.PointsFunc(ctx, state, req)
	}

	st, ok := state.(*State)
	if !ok {
		return nil, fmt.Errorf("modeltest: unexpected state type %T", state)
	}

	scores := []float64{0.5, 0.9, 0.7}
	if !req.Multimask {
		scores = scores[:1]
	}

	res := &model.PointResult{}
	for i, score := range scores {
		mask := RectMask(st.Width, st.Height, st.Width/4, st.Height/4, st.Width/2, st.Height/2)
		logits := imaging.NewMask(st.Width, st.Height)
		for j, v := range mask.Data {
			if v > 0 {
				logits.Data[j] = float32(i + 1)
			}
		}
		res.Masks = append(res.Masks, mask)
		res.Scores = append(res.Scores, score)
		res.Logits = append(res.Logits, logits)
	}
	return res, nil
}

// PredictFromText returns two rectangle instances in opposite corners.
func (f *Model) PredictFromText(ctx context.Context, state model.InferenceState, prompt string) (*model.TextResult, error) {
	f.TextCalls++
	f.LastPrompt = prompt
	if f.TextFunc != nil {
		return f.TextFunc(ctx, state, prompt)
	}

	st, ok := state.(*State)
	if !ok {
		return nil, fmt.Errorf("modeltest: unexpected state type %T", state)
	}

	first := RectMask(st.Width, st.Height, 0, 0, st.Width/4, st.Height/4)
	second := RectMask(st.Width, st.Height, st.Width/2, st.Height/2, st.Width-1, st.Height-1)
	return &model.TextResult{
		Masks:  []*imaging.Mask{first, second},
		Scores: []float64{0.95, 0.85},
		Boxes: []model.Box{
			{0, 0, float64(st.Width / 4), float64(st.Height / 4)},
			{float64(st.Width / 2), float64(st.Height / 2), float64(st.Width - 1), float64(st.Height - 1)},
		},
	}, nil
}
