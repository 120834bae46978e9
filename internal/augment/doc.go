// Package augment builds bbox-aware training variations of annotated
// images.
//
// A pipeline is an ordered list of op names applied to an image and its
// Pascal VOC boxes ([x1, y1, x2, y2] corner coordinates):
//
//	flip_h, flip_v        mirror the image and its boxes
//	rotate_<deg>          rotate about the center, canvas size kept
//	brightness, contrast  random photometric shift, scaled by intensity
//	brightness_contrast   both shifts at once
//	hue_saturation        random HSV shift (alias: color)
//	blur                  gaussian blur
//	noise                 additive gaussian pixel noise
//	scale_<pct>           resize image and boxes to pct percent
//
// Unknown op names are skipped. Geometric ops move the boxes with the
// pixels; after the pipeline, boxes that lost too much of their original
// area or fell under the minimum size are dropped together with their
// labels.
//
// Batch generates several randomized variations per input image, naming
// each output <stem>_aug_<n>_<ops>.jpg in the target directory.
//
// All randomness flows through an injectable *rand.Rand, so tests run on
// fixed seeds.
package augment
