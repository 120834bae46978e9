// Package colorseg is the built-in segmentation backend. It segments by
// color similarity in CIE-L*a*b* space, which makes it deterministic,
// dependency-free at runtime, and fast enough for interactive use, at the
// cost of only finding regions that are roughly uniform in color.
//
// SetImage converts the image to L*a*b* once. Point prompts grow a
// 4-connected region from the clicked pixels, admitting pixels whose
// distance to the nearest foreground click color stays within a tolerance;
// background-labeled clicks repel pixels that sit closer to their color.
// Three tolerance tiers produce the multimask candidates, from tight to
// generous. Text prompts resolve a color word (or a #RRGGBB literal) from
// a small vocabulary and return the connected components of all pixels
// near that color.
//
// Logit masks encode the signed tolerance margin per pixel, so feeding
// them back as prior logits re-seeds the next prediction from everything
// the previous one considered foreground.
package colorseg
