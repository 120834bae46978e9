package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/croplabs/segmentd/internal/imaging"
	"github.com/croplabs/segmentd/internal/model"
	"github.com/croplabs/segmentd/internal/segmentation"
)

// === load_image ===

type loadImageArgs struct {
	SessionID string `json:"session_id"`
	ImagePath string `json:"image_path"`
}

type loadImageResponse struct {
	baseResponse
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s *Server) handleLoadImage(ctx context.Context, line []byte) interface{} {
	var a loadImageArgs
	if err := json.Unmarshal(line, &a); err != nil {
		return errorResponse(err.Error())
	}
	res, err := s.svc.LoadImage(ctx, a.SessionID, a.ImagePath)
	if err != nil {
		s.log.Error("load_image failed", "err", err)
		return errorResponse(err.Error())
	}
	return loadImageResponse{
		baseResponse: baseResponse{Success: true, Message: "Image loaded successfully"},
		Width:        res.Width,
		Height:       res.Height,
	}
}

// === predict_click ===

type predictClickArgs struct {
	SessionID string       `json:"session_id"`
	Points    [][2]float64 `json:"points"`
	Labels    []int        `json:"labels"`
	// Pointer distinguishes "absent" (defaults to true) from explicit false.
	MultimaskOutput   *bool `json:"multimask_output"`
	UsePreviousLogits bool  `json:"use_previous_logits"`
}

type predictClickResponse struct {
	baseResponse
	Masks    []string  `json:"masks"`
	Scores   []float64 `json:"scores"`
	NumMasks int       `json:"num_masks"`
}

func (s *Server) handlePredictClick(ctx context.Context, line []byte) interface{} {
	var a predictClickArgs
	if err := json.Unmarshal(line, &a); err != nil {
		return errorResponse(err.Error())
	}

	multimask := true
	if a.MultimaskOutput != nil {
		multimask = *a.MultimaskOutput
	}
	points := make([]model.Point, len(a.Points))
	for i, p := range a.Points {
		points[i] = model.Point{X: p[0], Y: p[1]}
	}

	res, err := s.svc.PredictClick(ctx, segmentation.ClickRequest{
		SessionID:      a.SessionID,
		Points:         points,
		Labels:         a.Labels,
		Multimask:      multimask,
		UsePriorLogits: a.UsePreviousLogits,
	})
	if err != nil {
		s.log.Error("predict_click failed", "err", err)
		return errorResponse(err.Error())
	}
	return predictClickResponse{
		baseResponse: baseResponse{Success: true, Message: "Segmentation successful"},
		Masks:        res.Masks,
		Scores:       nonNilScores(res.Scores),
		NumMasks:     len(res.Masks),
	}
}

// === predict_text ===

type predictTextArgs struct {
	SessionID string `json:"session_id"`
	Prompt    string `json:"prompt"`
}

type predictTextResponse struct {
	baseResponse
	Masks        []string           `json:"masks"`
	Scores       []float64          `json:"scores"`
	NumInstances int                `json:"num_instances"`
	Boxes        []segmentation.Box `json:"boxes,omitempty"`
}

func (s *Server) handlePredictText(ctx context.Context, line []byte) interface{} {
	var a predictTextArgs
	if err := json.Unmarshal(line, &a); err != nil {
		return errorResponse(err.Error())
	}
	res, err := s.svc.PredictText(ctx, a.SessionID, a.Prompt)
	if err != nil {
		s.log.Error("predict_text failed", "err", err)
		return errorResponse(err.Error())
	}
	n := len(res.Masks)
	return predictTextResponse{
		baseResponse: baseResponse{Success: true, Message: fmt.Sprintf("Found %d instances", n)},
		Masks:        res.Masks,
		Scores:       nonNilScores(res.Scores),
		NumInstances: n,
		Boxes:        res.Boxes,
	}
}

// nonNilScores keeps a zero-instance result marshaling as [] rather than
// null.
func nonNilScores(s []float64) []float64 {
	if s == nil {
		return []float64{}
	}
	return s
}

// === clear_session ===

type clearSessionArgs struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleClearSession(line []byte) interface{} {
	var a clearSessionArgs
	if err := json.Unmarshal(line, &a); err != nil {
		return errorResponse(err.Error())
	}
	if err := s.svc.ClearSession(a.SessionID); err != nil {
		return errorResponse(err.Error())
	}
	return baseResponse{Success: true, Message: "Session cleared"}
}

// === crop_from_mask ===

type cropFromMaskArgs struct {
	SessionID  string `json:"session_id"`
	MaskIndex  int    `json:"mask_index"`
	OutputPath string `json:"output_path"`
	// Pointers distinguish "absent" (defaulted) from explicit values:
	// an explicit empty mode or zero padding is passed through untouched.
	BackgroundMode *string `json:"background_mode"`
	Padding        *int    `json:"padding"`
}

type cropFromMaskResponse struct {
	baseResponse
	OutputPath string `json:"output_path"`
	BBox       [4]int `json:"bbox"`
	CropWidth  int    `json:"crop_width"`
	CropHeight int    `json:"crop_height"`
	MaskArea   int    `json:"mask_area"`
}

func (s *Server) handleCropFromMask(line []byte) interface{} {
	var a cropFromMaskArgs
	if err := json.Unmarshal(line, &a); err != nil {
		return errorResponse(err.Error())
	}

	mode := imaging.BackgroundTransparent
	if a.BackgroundMode != nil {
		mode = imaging.BackgroundMode(*a.BackgroundMode)
	}
	padding := 10
	if a.Padding != nil {
		padding = *a.Padding
	}

	out, err := s.svc.CropFromMask(segmentation.CropRequest{
		SessionID:      a.SessionID,
		MaskIndex:      a.MaskIndex,
		OutputPath:     a.OutputPath,
		BackgroundMode: mode,
		Padding:        padding,
	})
	if err != nil {
		s.log.Error("crop_from_mask failed", "err", err)
		return errorResponse(err.Error())
	}
	return cropFromMaskResponse{
		baseResponse: baseResponse{Success: true, Message: "Crop created successfully"},
		OutputPath:   out.OutputPath,
		BBox:         out.Bounds.Array(),
		CropWidth:    out.Width,
		CropHeight:   out.Height,
		MaskArea:     out.MaskArea,
	}
}
