package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
)

// EncodeMaskPNG renders a mask as an 8-bit grayscale PNG and returns it
// base64-encoded, the form masks take on the wire.
func EncodeMaskPNG(m *Mask) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, m.ToGray()); err != nil {
		return "", fmt.Errorf("failed to encode mask: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
