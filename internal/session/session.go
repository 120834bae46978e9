// Package session holds per-image segmentation state between commands.
//
// A session is created by loading an image and lives until cleared or
// process exit. Sessions are never persisted and never expire on their
// own; the client owns their lifecycle. Identifiers are chosen by the
// client and reloading an existing identifier replaces the old session
// wholesale.
package session

import (
	"fmt"
	"image"

	"github.com/croplabs/segmentd/internal/imaging"
	"github.com/croplabs/segmentd/internal/model"
)

// Session is the unit of state for one loaded image.
type Session struct {
	// ID is the client-chosen identifier.
	ID string

	// ImagePath is the path the image was loaded from.
	ImagePath string

	// Image is the decoded image, alpha flattened. Width and Height
	// mirror its bounds so handlers never re-derive them.
	Image  *image.NRGBA
	Width  int
	Height int

	// State is the backend's opaque per-image handle.
	State model.InferenceState

	// PriorLogits are the logits of the best-scoring mask from the most
	// recent point prediction, nil until one succeeds. They feed the
	// next prediction when the client asks for refinement.
	PriorLogits *imaging.Mask

	// LastMasks and LastScores are the full candidate set of the most
	// recent prediction (point or text), parallel slices. Crops index
	// into LastMasks. nil means no prediction has run for this session;
	// a zero-instance prediction leaves it empty but non-nil.
	LastMasks  []*imaging.Mask
	LastScores []float64
}

// NotFoundError reports a command that referenced a session that does not
// exist. The text is wire contract: operations that name the session set
// ID, the clear operation historically does not.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return "Session not found"
	}
	return fmt.Sprintf("Session %s not found", e.ID)
}
