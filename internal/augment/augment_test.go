package augment

import (
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x), uint8(y), 90, 255})
		}
	}
	return img
}

func fixedRand() *rand.Rand {
	return rand.New(rand.NewSource(7))
}

func TestApply_FlipH(t *testing.T) {
	res, err := Apply(testImage(100, 80),
		[]Box{{10, 20, 30, 40}}, []string{"mug"},
		Params{Ops: []string{"flip_h"}, Rand: fixedRand()})
	require.NoError(t, err)

	assert.Equal(t, []string{"flip_h"}, res.Applied)
	assert.Equal(t, 100, res.Width)
	assert.Equal(t, 80, res.Height)
	require.Len(t, res.Boxes, 1)
	assert.Equal(t, Box{70, 20, 90, 40}, res.Boxes[0])
	assert.Equal(t, []string{"mug"}, res.Labels)
}

func TestApply_FlipV(t *testing.T) {
	res, err := Apply(testImage(100, 80),
		[]Box{{10, 20, 30, 40}}, []string{"mug"},
		Params{Ops: []string{"flip_v"}, Rand: fixedRand()})
	require.NoError(t, err)

	require.Len(t, res.Boxes, 1)
	assert.Equal(t, Box{10, 40, 30, 60}, res.Boxes[0])
}

func TestApply_DoubleFlipRestoresBoxes(t *testing.T) {
	res, err := Apply(testImage(100, 80),
		[]Box{{10, 20, 30, 40}}, []string{"mug"},
		Params{Ops: []string{"flip_h", "flip_h"}, Rand: fixedRand()})
	require.NoError(t, err)

	require.Len(t, res.Boxes, 1)
	assert.Equal(t, Box{10, 20, 30, 40}, res.Boxes[0])
}

func TestApply_Rotate180(t *testing.T) {
	res, err := Apply(testImage(100, 80),
		[]Box{{10, 20, 30, 40}}, []string{"mug"},
		Params{Ops: []string{"rotate_180"}, Rand: fixedRand()})
	require.NoError(t, err)

	require.Len(t, res.Boxes, 1)
	got := res.Boxes[0]
	want := Box{70, 40, 90, 60}
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-9, "coordinate %d", i)
	}
}

func TestApply_Rotate90KeepsCenteredBox(t *testing.T) {
	res, err := Apply(testImage(100, 100),
		[]Box{{40, 40, 60, 60}}, []string{"mug"},
		Params{Ops: []string{"rotate_90"}, Rand: fixedRand()})
	require.NoError(t, err)

	require.Len(t, res.Boxes, 1)
	got := res.Boxes[0]
	want := Box{40, 40, 60, 60}
	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-9, "coordinate %d", i)
	}
}

func TestApply_RotateDropsBoxPushedOffCanvas(t *testing.T) {
	// A box in the far corner of a wide canvas leaves the frame under a
	// 90 degree center rotation.
	res, err := Apply(testImage(200, 100),
		[]Box{{180, 0, 200, 20}, {90, 40, 110, 60}}, []string{"corner", "center"},
		Params{Ops: []string{"rotate_90"}, Rand: fixedRand()})
	require.NoError(t, err)

	require.Len(t, res.Boxes, 1)
	assert.Equal(t, []string{"center"}, res.Labels)
	assert.Equal(t, 1, res.ResultBoxCount)
	assert.Equal(t, 2, res.OriginalBoxCount)
}

func TestApply_Scale(t *testing.T) {
	res, err := Apply(testImage(100, 80),
		[]Box{{10, 20, 30, 40}}, []string{"mug"},
		Params{Ops: []string{"scale_50"}, Rand: fixedRand()})
	require.NoError(t, err)

	assert.Equal(t, 50, res.Width)
	assert.Equal(t, 40, res.Height)
	require.Len(t, res.Boxes, 1)
	assert.Equal(t, Box{5, 10, 15, 20}, res.Boxes[0])
}

func TestApply_ScaleDropsUndersizedBoxes(t *testing.T) {
	res, err := Apply(testImage(100, 80),
		[]Box{{0, 0, 14, 14}, {20, 10, 60, 50}}, []string{"small", "big"},
		Params{Ops: []string{"scale_50"}, Rand: fixedRand()})
	require.NoError(t, err)

	// 14x14 shrinks to 7x7 = 49 px², under the minimum area.
	require.Len(t, res.Boxes, 1)
	assert.Equal(t, []string{"big"}, res.Labels)
}

func TestApply_UnknownOpsAreSkipped(t *testing.T) {
	res, err := Apply(testImage(100, 80),
		[]Box{{10, 20, 30, 40}}, []string{"mug"},
		Params{Ops: []string{"sparkle", "flip_h", "posterize"}, Rand: fixedRand()})
	require.NoError(t, err)

	assert.Equal(t, []string{"flip_h"}, res.Applied)
	assert.Equal(t, Box{70, 20, 90, 40}, res.Boxes[0])
}

func TestApply_PhotometricOpsKeepBoxes(t *testing.T) {
	ops := []string{"brightness", "contrast", "brightness_contrast", "hue_saturation", "color", "blur", "noise"}
	for _, op := range ops {
		t.Run(op, func(t *testing.T) {
			res, err := Apply(testImage(100, 80),
				[]Box{{10, 20, 30, 40}}, []string{"mug"},
				Params{Ops: []string{op}, Rand: fixedRand()})
			require.NoError(t, err)

			assert.Equal(t, []string{op}, res.Applied)
			assert.Equal(t, 100, res.Width)
			assert.Equal(t, 80, res.Height)
			require.Len(t, res.Boxes, 1)
			assert.Equal(t, Box{10, 20, 30, 40}, res.Boxes[0])
		})
	}
}

func TestApply_SanitizeClampsToCanvas(t *testing.T) {
	res, err := Apply(testImage(100, 80),
		[]Box{{-10, -10, 50, 500}}, []string{"mug"},
		Params{Rand: fixedRand()})
	require.NoError(t, err)

	require.Len(t, res.Boxes, 1)
	assert.Equal(t, Box{0, 0, 50, 80}, res.Boxes[0])
	assert.Empty(t, res.Applied)
}

func TestApply_SmallInputBoxFilteredEvenWithoutOps(t *testing.T) {
	res, err := Apply(testImage(100, 80),
		[]Box{{10, 10, 19, 19}, {30, 30, 80, 70}}, []string{"tiny", "big"},
		Params{Rand: fixedRand()})
	require.NoError(t, err)

	require.Len(t, res.Boxes, 1)
	assert.Equal(t, []string{"big"}, res.Labels)
}

func TestApply_NoValidBoxes(t *testing.T) {
	tests := []struct {
		name  string
		boxes []Box
	}{
		{"outside canvas", []Box{{200, 200, 300, 300}}},
		{"zero extent", []Box{{10, 10, 10, 40}}},
		{"inverted", []Box{{50, 50, 20, 20}}},
		{"none at all", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels := make([]string, len(tt.boxes))
			_, err := Apply(testImage(100, 80), tt.boxes, labels, Params{Rand: fixedRand()})
			require.ErrorIs(t, err, ErrNoValidBoxes)
		})
	}
}

func TestApply_ExtraLabelsIgnored(t *testing.T) {
	res, err := Apply(testImage(100, 80),
		[]Box{{10, 20, 30, 40}}, []string{"mug", "stray"},
		Params{Rand: fixedRand()})
	require.NoError(t, err)

	assert.Equal(t, []string{"mug"}, res.Labels)
}

func TestConvertBoxes(t *testing.T) {
	boxes, labels, err := convertBoxes(
		[][]float64{{10, 20, 30, 40}, {5, 5}, {0, 0, 16, 24}},
		[]string{"a", "broken", "b"}, "xywh")
	require.NoError(t, err)

	// xywh rows become corner boxes; the malformed row is dropped with
	// its label.
	assert.Equal(t, []Box{{10, 20, 40, 60}, {0, 0, 16, 24}}, boxes)
	assert.Equal(t, []string{"a", "b"}, labels)
}

func TestConvertBoxes_XYXYPassthrough(t *testing.T) {
	boxes, _, err := convertBoxes([][]float64{{10, 20, 30, 40}}, []string{"a"}, "xyxy")
	require.NoError(t, err)
	assert.Equal(t, []Box{{10, 20, 30, 40}}, boxes)
}

func TestConvertBoxes_UnknownFormat(t *testing.T) {
	_, _, err := convertBoxes([][]float64{{1, 2, 3, 4}}, []string{"a"}, "voc")
	require.EqualError(t, err, "Unknown bbox format: voc")
}

func TestSuffixInt(t *testing.T) {
	tests := []struct {
		name string
		def  int
		want int
	}{
		{"rotate_30", 30, 30},
		{"rotate_45", 30, 45},
		{"rotate_-15", 30, -15},
		{"rotate", 30, 30},
		{"rotate_big", 30, 30},
		{"scale_85", 90, 85},
		{"scale_85_extra", 90, 85},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, suffixInt(tt.name, tt.def), tt.name)
	}
}
