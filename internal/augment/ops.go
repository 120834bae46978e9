package augment

import (
	"image"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// applyOp applies one named op to the image and its boxes. The returned
// flag is false for unknown names, which leave both untouched.
func applyOp(img *image.NRGBA, boxes []Box, name string, intensity float64, rng *rand.Rand) (*image.NRGBA, []Box, bool) {
	width := img.Bounds().Dx()
	height := img.Bounds().Dy()

	switch {
	case name == "flip_h" || name == "horizontal_flip":
		out := imaging.Clone(transform.FlipH(img))
		w := float64(width)
		flipped := make([]Box, len(boxes))
		for i, b := range boxes {
			flipped[i] = Box{w - b[2], b[1], w - b[0], b[3]}
		}
		return out, flipped, true

	case name == "flip_v" || name == "vertical_flip":
		out := imaging.Clone(transform.FlipV(img))
		h := float64(height)
		flipped := make([]Box, len(boxes))
		for i, b := range boxes {
			flipped[i] = Box{b[0], h - b[3], b[2], h - b[1]}
		}
		return out, flipped, true

	case strings.HasPrefix(name, "rotate"):
		angle := float64(suffixInt(name, 30))
		out := imaging.Clone(transform.Rotate(img, angle, nil))
		return out, rotateBoxes(boxes, angle, width, height), true

	case name == "brightness":
		change := symmetric(rng, 0.2*intensity)
		return imaging.Clone(adjust.Brightness(img, change)), boxes, true

	case name == "contrast":
		change := symmetric(rng, 0.2*intensity)
		return imaging.Clone(adjust.Contrast(img, change)), boxes, true

	case name == "brightness_contrast":
		bright := adjust.Brightness(img, symmetric(rng, 0.2*intensity))
		return imaging.Clone(adjust.Contrast(bright, symmetric(rng, 0.2*intensity))), boxes, true

	case name == "hue_saturation" || name == "color":
		out := shiftHSV(img,
			symmetric(rng, 15*intensity),
			symmetric(rng, 25.0/255.0*intensity),
			symmetric(rng, 15.0/255.0*intensity))
		return out, boxes, true

	case name == "blur":
		// Matches a 3 to 5 pixel gaussian kernel.
		radius := 1 + rng.Float64()
		return imaging.Clone(blur.Gaussian(img, radius)), boxes, true

	case name == "noise":
		sigma := math.Sqrt(10 + 20*rng.Float64())
		return addNoise(img, sigma, rng), boxes, true

	case strings.HasPrefix(name, "scale"):
		factor := float64(suffixInt(name, 90)) / 100.0
		newW := max(1, int(math.Round(float64(width)*factor)))
		newH := max(1, int(math.Round(float64(height)*factor)))
		out := imaging.Resize(img, newW, newH, imaging.Lanczos)
		sx := float64(newW) / float64(width)
		sy := float64(newH) / float64(height)
		scaled := make([]Box, len(boxes))
		for i, b := range boxes {
			scaled[i] = Box{b[0] * sx, b[1] * sy, b[2] * sx, b[3] * sy}
		}
		return out, scaled, true

	default:
		return img, boxes, false
	}
}

// suffixInt parses the number after the first underscore, as in
// "rotate_30" or "scale_85". Missing or unparsable suffixes fall back to
// def.
func suffixInt(name string, def int) int {
	parts := strings.Split(name, "_")
	if len(parts) < 2 {
		return def
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil {
		return def
	}
	return n
}

// symmetric draws uniformly from [-limit, limit].
func symmetric(rng *rand.Rand, limit float64) float64 {
	return (rng.Float64()*2 - 1) * limit
}

// rotateBoxes maps each box through the same center rotation the raster
// op applies and takes the axis-aligned hull of the rotated corners. The
// hull may extend past the canvas; the caller's filter pass clips it and
// decides whether enough of the box survived.
func rotateBoxes(boxes []Box, angle float64, width, height int) []Box {
	sin, cos := math.Sincos(angle * math.Pi / 180)
	px := float64(width) / 2
	py := float64(height) / 2

	out := make([]Box, len(boxes))
	for i, b := range boxes {
		corners := [4][2]float64{
			{b[0], b[1]},
			{b[2], b[1]},
			{b[0], b[3]},
			{b[2], b[3]},
		}
		minX, minY := math.Inf(1), math.Inf(1)
		maxX, maxY := math.Inf(-1), math.Inf(-1)
		for _, c := range corners {
			dx := c[0] - px
			dy := c[1] - py
			x := cos*dx - sin*dy + px
			y := sin*dx + cos*dy + py
			minX = math.Min(minX, x)
			minY = math.Min(minY, y)
			maxX = math.Max(maxX, x)
			maxY = math.Max(maxY, y)
		}
		out[i] = Box{minX, minY, maxX, maxY}
	}
	return out
}

// clipBox clamps a box to the canvas. Order is preserved, so a box fully
// outside collapses to a zero-area edge instead of inverting.
func clipBox(b Box, width, height int) Box {
	w := float64(width)
	h := float64(height)
	return Box{
		math.Min(math.Max(b[0], 0), w),
		math.Min(math.Max(b[1], 0), h),
		math.Min(math.Max(b[2], 0), w),
		math.Min(math.Max(b[3], 0), h),
	}
}

// shiftHSV moves every pixel by the given hue (degrees), saturation and
// value offsets. Alpha is untouched.
func shiftHSV(img *image.NRGBA, hueShift, satShift, valShift float64) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 0; i < len(out.Pix); i += 4 {
		c := colorful.Color{
			R: float64(out.Pix[i]) / 255,
			G: float64(out.Pix[i+1]) / 255,
			B: float64(out.Pix[i+2]) / 255,
		}
		hue, sat, val := c.Hsv()
		hue = math.Mod(hue+hueShift+360, 360)
		sat = clamp01(sat + satShift)
		val = clamp01(val + valShift)
		r, g, b := colorful.Hsv(hue, sat, val).RGB255()
		out.Pix[i] = r
		out.Pix[i+1] = g
		out.Pix[i+2] = b
	}
	return out
}

// addNoise adds gaussian noise with the given sigma to every color
// channel.
func addNoise(img *image.NRGBA, sigma float64, rng *rand.Rand) *image.NRGBA {
	out := imaging.Clone(img)
	for i := 0; i < len(out.Pix); i += 4 {
		for c := 0; c < 3; c++ {
			v := float64(out.Pix[i+c]) + rng.NormFloat64()*sigma
			out.Pix[i+c] = uint8(math.Min(math.Max(v, 0), 255))
		}
	}
	return out
}

func clamp01(v float64) float64 {
	return math.Min(math.Max(v, 0), 1)
}
