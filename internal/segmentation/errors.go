package segmentation

import (
	"errors"
	"fmt"
)

// ErrNoMasks is returned when a crop is requested before any prediction
// has produced masks for the session. The text is wire contract.
var ErrNoMasks = errors.New("No masks available. Run a prediction first.")

// MaskIndexError reports a crop request indexing outside the stored mask
// set. The text is wire contract.
type MaskIndexError struct {
	Index int
	Have  int
}

func (e *MaskIndexError) Error() string {
	return fmt.Sprintf("Mask index %d out of range (have %d masks)", e.Index, e.Have)
}

// InputError reports arguments that violate an operation's input contract,
// as opposed to failures of the model or the filesystem.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return e.Reason
}
