// Package imaging provides image loading, mask geometry, and mask-guided
// cropping for the segmentation service.
//
// Images are decoded into *image.NRGBA with the alpha channel flattened to
// opaque, so every downstream consumer sees one pixel layout. Masks are
// dense float32 rasters aligned pixel-for-pixel with the image they were
// predicted on.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner.
// Bounding boxes are inclusive on all four edges: a box covering a single
// pixel has X1 == X2 and Y1 == Y2.
//
// # Mask Values
//
// A mask pixel is foreground when its value is strictly greater than 0.5.
// Rendering scales values into 0-255 grayscale, so binary masks come out
// as pure black and white.
//
// # Error Handling
//
// Errors whose text reaches the client verbatim (empty mask, unknown
// background mode) are typed so callers can branch on them; their strings
// are part of the wire contract and must not be reworded.
package imaging
