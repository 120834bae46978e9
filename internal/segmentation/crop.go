package segmentation

import (
	"github.com/croplabs/segmentd/internal/imaging"
	"github.com/croplabs/segmentd/internal/session"
)

// CropRequest selects one stored mask and describes how to persist its
// crop.
type CropRequest struct {
	SessionID      string
	MaskIndex      int
	OutputPath     string
	BackgroundMode imaging.BackgroundMode
	Padding        int
}

// CropOutcome reports a persisted crop. Bounds is the padded bounding box
// in source-image coordinates; Width and Height are the actual pixel
// extents of the written file.
type CropOutcome struct {
	OutputPath string
	Bounds     imaging.Bounds
	Width      int
	Height     int
	MaskArea   int
}

// CropFromMask extracts the crop for one stored mask and writes it as PNG.
//
// The precondition chain is ordered: the session must exist, a prediction
// must have stored masks (text results count the same as point results),
// the index must be in range, and the mask must have foreground. Each
// violated precondition has its own typed error and nothing is written.
func (s *Service) CropFromMask(req CropRequest) (*CropOutcome, error) {
	sess, ok := s.store.Get(req.SessionID)
	if !ok {
		return nil, &session.NotFoundError{ID: req.SessionID}
	}
	// nil means no prediction ever ran; an empty set from a zero-instance
	// prediction falls through to the index check instead.
	if sess.LastMasks == nil {
		return nil, ErrNoMasks
	}
	if req.MaskIndex < 0 || req.MaskIndex >= len(sess.LastMasks) {
		return nil, &MaskIndexError{Index: req.MaskIndex, Have: len(sess.LastMasks)}
	}

	s.log.Info("creating crop",
		"session", req.SessionID,
		"mask_index", req.MaskIndex,
		"background_mode", string(req.BackgroundMode))

	res, err := imaging.ExtractCrop(sess.Image, sess.LastMasks[req.MaskIndex], req.Padding, req.BackgroundMode)
	if err != nil {
		return nil, err
	}
	if err := imaging.SaveCrop(res.Image, req.OutputPath); err != nil {
		return nil, err
	}

	s.log.Info("crop saved",
		"session", req.SessionID,
		"path", req.OutputPath,
		"bbox", res.Bounds.String(),
		"mask_area", res.Area)

	return &CropOutcome{
		OutputPath: req.OutputPath,
		Bounds:     res.Bounds,
		Width:      res.Bounds.Width(),
		Height:     res.Bounds.Height(),
		MaskArea:   res.Area,
	}, nil
}
