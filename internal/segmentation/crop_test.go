package segmentation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/croplabs/segmentd/internal/imaging"
	"github.com/croplabs/segmentd/internal/model"
)

// predictOnce loads a session and runs one multimask click so crops have
// masks to work with. The default fake mask covers (w/4,h/4)-(w/2,h/2).
func predictOnce(t *testing.T, svc *Service, id string, width, height int) {
	t.Helper()
	loadSession(t, svc, id, width, height)
	_, err := svc.PredictClick(context.Background(), ClickRequest{
		SessionID: id,
		Points:    []model.Point{{X: 1, Y: 1}},
		Labels:    []int{1},
		Multimask: true,
	})
	if err != nil {
		t.Fatalf("PredictClick failed: %v", err)
	}
}

func TestCropFromMask(t *testing.T) {
	svc, _, _ := newTestService()
	predictOnce(t, svc, "s1", 40, 40)
	out := filepath.Join(t.TempDir(), "crops", "object.png")

	res, err := svc.CropFromMask(CropRequest{
		SessionID:      "s1",
		MaskIndex:      0,
		OutputPath:     out,
		BackgroundMode: imaging.BackgroundTransparent,
		Padding:        2,
	})
	if err != nil {
		t.Fatalf("CropFromMask failed: %v", err)
	}

	// Mask rect (10,10)-(20,20) padded by 2.
	wantBounds := imaging.Bounds{X1: 8, Y1: 8, X2: 22, Y2: 22}
	if res.Bounds != wantBounds {
		t.Errorf("bounds = %v, want %v", res.Bounds, wantBounds)
	}
	if res.Width != 15 || res.Height != 15 {
		t.Errorf("extents = %dx%d, want 15x15", res.Width, res.Height)
	}
	if res.MaskArea != 121 {
		t.Errorf("mask area = %d, want 121 (11x11 rect)", res.MaskArea)
	}
	if res.OutputPath != out {
		t.Errorf("output path = %q, want %q", res.OutputPath, out)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("crop file missing: %v", err)
	}
}

func TestCropFromMask_AllIndicesRoundTrip(t *testing.T) {
	svc, _, _ := newTestService()
	predictOnce(t, svc, "s1", 40, 40)
	dir := t.TempDir()

	for idx := 0; idx < 3; idx++ {
		_, err := svc.CropFromMask(CropRequest{
			SessionID:      "s1",
			MaskIndex:      idx,
			OutputPath:     filepath.Join(dir, "crop.png"),
			BackgroundMode: imaging.BackgroundOriginal,
			Padding:        0,
		})
		if err != nil {
			t.Errorf("mask index %d from the prediction must be croppable: %v", idx, err)
		}
	}
}

func TestCropFromMask_SessionMissing(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CropFromMask(CropRequest{SessionID: "ghost", OutputPath: "x.png"})
	if err == nil || err.Error() != "Session ghost not found" {
		t.Fatalf("err = %v", err)
	}
}

func TestCropFromMask_NoPredictionYet(t *testing.T) {
	svc, _, _ := newTestService()
	loadSession(t, svc, "s1", 10, 10)

	_, err := svc.CropFromMask(CropRequest{SessionID: "s1", OutputPath: "x.png"})
	if !errors.Is(err, ErrNoMasks) {
		t.Fatalf("err = %v, want ErrNoMasks", err)
	}
	if err.Error() != "No masks available. Run a prediction first." {
		t.Errorf("message = %q", err.Error())
	}
}

func TestCropFromMask_IndexOutOfRange(t *testing.T) {
	svc, _, _ := newTestService()
	predictOnce(t, svc, "s1", 40, 40)

	_, err := svc.CropFromMask(CropRequest{
		SessionID:  "s1",
		MaskIndex:  5,
		OutputPath: "x.png",
	})
	var idxErr *MaskIndexError
	if !errors.As(err, &idxErr) {
		t.Fatalf("err = %v, want *MaskIndexError", err)
	}
	if err.Error() != "Mask index 5 out of range (have 3 masks)" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestCropFromMask_NegativeIndex(t *testing.T) {
	svc, _, _ := newTestService()
	predictOnce(t, svc, "s1", 40, 40)

	_, err := svc.CropFromMask(CropRequest{
		SessionID:  "s1",
		MaskIndex:  -1,
		OutputPath: "x.png",
	})
	var idxErr *MaskIndexError
	if !errors.As(err, &idxErr) {
		t.Fatalf("err = %v, want *MaskIndexError for a negative index", err)
	}
}

func TestCropFromMask_EmptyMask(t *testing.T) {
	svc, _, fake := newTestService()
	loadSession(t, svc, "s1", 20, 20)

	fake.PointsFunc = func(ctx context.Context, state model.InferenceState, req model.PointRequest) (*model.PointResult, error) {
		empty := imaging.NewMask(20, 20)
		return &model.PointResult{
			Masks:  []*imaging.Mask{empty},
			Scores: []float64{0.1},
			Logits: []*imaging.Mask{empty},
		}, nil
	}
	if _, err := svc.PredictClick(context.Background(), ClickRequest{
		SessionID: "s1",
		Points:    []model.Point{{X: 1, Y: 1}},
		Labels:    []int{1},
	}); err != nil {
		t.Fatalf("PredictClick failed: %v", err)
	}

	_, err := svc.CropFromMask(CropRequest{
		SessionID:      "s1",
		MaskIndex:      0,
		OutputPath:     filepath.Join(t.TempDir(), "x.png"),
		BackgroundMode: imaging.BackgroundTransparent,
	})
	if !errors.Is(err, imaging.ErrEmptyMask) {
		t.Fatalf("err = %v, want empty-mask error", err)
	}
}

func TestCropFromMask_UnknownBackgroundMode(t *testing.T) {
	svc, _, _ := newTestService()
	predictOnce(t, svc, "s1", 40, 40)
	out := filepath.Join(t.TempDir(), "x.png")

	_, err := svc.CropFromMask(CropRequest{
		SessionID:      "s1",
		MaskIndex:      0,
		OutputPath:     out,
		BackgroundMode: imaging.BackgroundMode("sparkle"),
	})
	if err == nil || err.Error() != "Unknown background_mode: sparkle" {
		t.Fatalf("err = %v", err)
	}
	if _, statErr := os.Stat(out); statErr == nil {
		t.Error("no file may be written on a failed crop")
	}
}

func TestCropFromMask_AfterTextPrediction(t *testing.T) {
	svc, _, _ := newTestService()
	loadSession(t, svc, "s1", 40, 40)
	ctx := context.Background()

	if _, err := svc.PredictText(ctx, "s1", "red"); err != nil {
		t.Fatalf("PredictText failed: %v", err)
	}

	// The default fake returns two instances; both must be croppable.
	_, err := svc.CropFromMask(CropRequest{
		SessionID:      "s1",
		MaskIndex:      1,
		OutputPath:     filepath.Join(t.TempDir(), "instance.png"),
		BackgroundMode: imaging.BackgroundWhite,
		Padding:        1,
	})
	if err != nil {
		t.Fatalf("crop after text prediction failed: %v", err)
	}
}

func TestCropFromMask_AfterZeroInstanceText(t *testing.T) {
	svc, _, fake := newTestService()
	loadSession(t, svc, "s1", 20, 20)

	fake.TextFunc = func(ctx context.Context, state model.InferenceState, prompt string) (*model.TextResult, error) {
		return &model.TextResult{}, nil
	}
	if _, err := svc.PredictText(context.Background(), "s1", "unicorn"); err != nil {
		t.Fatalf("PredictText failed: %v", err)
	}

	_, err := svc.CropFromMask(CropRequest{
		SessionID:  "s1",
		MaskIndex:  0,
		OutputPath: "x.png",
	})
	var idxErr *MaskIndexError
	if !errors.As(err, &idxErr) {
		t.Fatalf("err = %v, want index error (a prediction did run)", err)
	}
	if err.Error() != "Mask index 0 out of range (have 0 masks)" {
		t.Errorf("message = %q", err.Error())
	}
}
