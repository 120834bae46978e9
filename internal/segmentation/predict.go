package segmentation

import (
	"context"
	"fmt"

	"github.com/croplabs/segmentd/internal/imaging"
	"github.com/croplabs/segmentd/internal/model"
	"github.com/croplabs/segmentd/internal/session"
)

// ClickRequest carries one point-prompted prediction.
type ClickRequest struct {
	SessionID string
	Points    []model.Point
	Labels    []int

	// Multimask asks the model for up to three candidates.
	Multimask bool

	// UsePriorLogits feeds the previous prediction's best logits back as
	// refinement guidance. When the session has none, the flag silently
	// degrades to a plain prediction.
	UsePriorLogits bool
}

// PredictResult is the rendered outcome of a prediction: masks as base64
// PNGs, parallel to their scores. Boxes is non-empty only for text
// predictions whose backend reports instance boxes.
type PredictResult struct {
	Masks  []string
	Scores []float64
	Boxes  []model.Box
}

// PredictClick runs a point-prompted prediction and updates the session:
// lastMasks and lastScores are replaced with the full candidate set, and
// the logits of the best-scoring candidate (first index on ties) become
// the session's prior logits for later refinement.
func (s *Service) PredictClick(ctx context.Context, req ClickRequest) (*PredictResult, error) {
	if len(req.Points) != len(req.Labels) {
		return nil, &InputError{Reason: fmt.Sprintf(
			"points and labels must be the same length (got %d points, %d labels)",
			len(req.Points), len(req.Labels))}
	}

	sess, ok := s.store.Get(req.SessionID)
	if !ok {
		return nil, &session.NotFoundError{ID: req.SessionID}
	}

	s.log.Info("predicting from points", "session", req.SessionID, "points", len(req.Points))

	mreq := model.PointRequest{
		Points:    req.Points,
		Labels:    req.Labels,
		Multimask: req.Multimask,
	}
	if req.UsePriorLogits {
		if sess.PriorLogits != nil {
			s.log.Info("using previous logits for refinement", "session", req.SessionID)
			mreq.PriorLogits = sess.PriorLogits
		} else {
			s.log.Debug("refinement requested with no stored logits", "session", req.SessionID)
		}
	}

	res, err := s.model.PredictFromPoints(ctx, sess.State, mreq)
	if err != nil {
		return nil, err
	}
	if len(res.Masks) != len(res.Scores) {
		return nil, fmt.Errorf("model returned %d masks with %d scores", len(res.Masks), len(res.Scores))
	}
	if len(res.Logits) > 0 && len(res.Logits) != len(res.Masks) {
		return nil, fmt.Errorf("model returned %d masks with %d logit sets", len(res.Masks), len(res.Logits))
	}
	if err := checkMaskGeometry(sess, res.Masks); err != nil {
		return nil, err
	}

	err = s.store.Update(req.SessionID, func(sess *session.Session) error {
		if len(res.Logits) > 0 {
			sess.PriorLogits = res.Logits[bestIndex(res.Scores)]
		}
		sess.LastMasks = res.Masks
		if sess.LastMasks == nil {
			sess.LastMasks = []*imaging.Mask{}
		}
		sess.LastScores = res.Scores
		return nil
	})
	if err != nil {
		return nil, err
	}

	masks, err := rendered(res.Masks)
	if err != nil {
		return nil, err
	}

	s.log.Info("prediction complete", "session", req.SessionID, "masks", len(masks))
	return &PredictResult{Masks: masks, Scores: res.Scores}, nil
}

// PredictText runs a text-prompted prediction. Zero instances is a
// success. The session's lastMasks and lastScores are replaced so crops
// can target text results, but prior logits are left alone: refinement
// chains through point predictions only.
func (s *Service) PredictText(ctx context.Context, sessionID, prompt string) (*PredictResult, error) {
	sess, ok := s.store.Get(sessionID)
	if !ok {
		return nil, &session.NotFoundError{ID: sessionID}
	}

	s.log.Info("predicting from text", "session", sessionID, "prompt", prompt)

	res, err := s.model.PredictFromText(ctx, sess.State, prompt)
	if err != nil {
		return nil, err
	}
	if len(res.Masks) != len(res.Scores) {
		return nil, fmt.Errorf("model returned %d masks with %d scores", len(res.Masks), len(res.Scores))
	}
	if err := checkMaskGeometry(sess, res.Masks); err != nil {
		return nil, err
	}

	err = s.store.Update(sessionID, func(sess *session.Session) error {
		sess.LastMasks = res.Masks
		if sess.LastMasks == nil {
			sess.LastMasks = []*imaging.Mask{}
		}
		sess.LastScores = res.Scores
		return nil
	})
	if err != nil {
		return nil, err
	}

	masks, err := rendered(res.Masks)
	if err != nil {
		return nil, err
	}

	s.log.Info("text prediction complete", "session", sessionID, "instances", len(masks))
	return &PredictResult{Masks: masks, Scores: res.Scores, Boxes: res.Boxes}, nil
}

// bestIndex returns the index of the highest score, first one on ties.
func bestIndex(scores []float64) int {
	best := 0
	for i, s := range scores[1:] {
		if s > scores[best] {
			best = i + 1
		}
	}
	return best
}
