package segmentation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/croplabs/segmentd/internal/imaging"
	"github.com/croplabs/segmentd/internal/logging"
	"github.com/croplabs/segmentd/internal/model"
	"github.com/croplabs/segmentd/internal/session"
)

// Service implements the segmentation operations over an injectable
// session store and model backend.
type Service struct {
	store session.Store
	model model.Model
	log   *slog.Logger
}

// New wires a service. A nil logger silences diagnostics.
func New(store session.Store, m model.Model, log *slog.Logger) *Service {
	if log == nil {
		log = logging.Nop()
	}
	return &Service{store: store, model: m, log: log}
}

// LoadResult is the outcome of LoadImage.
type LoadResult struct {
	Width  int
	Height int
}

// LoadImage decodes the image at path, runs the backend's per-image setup,
// and creates the session, replacing any previous session with the same
// ID. Replacement discards all stored masks and logits.
func (s *Service) LoadImage(ctx context.Context, sessionID, path string) (*LoadResult, error) {
	s.log.Info("loading image", "session", sessionID, "path", path)

	img, err := imaging.Load(path)
	if err != nil {
		return nil, err
	}

	state, err := s.model.SetImage(ctx, img)
	if err != nil {
		return nil, err
	}

	width := img.Bounds().Dx()
	height := img.Bounds().Dy()
	s.store.Create(&session.Session{
		ID:        sessionID,
		ImagePath: path,
		Image:     img,
		Width:     width,
		Height:    height,
		State:     state,
	})

	s.log.Info("image loaded", "session", sessionID, "width", width, "height", height)
	return &LoadResult{Width: width, Height: height}, nil
}

// ClearSession removes the session and everything it holds. Unknown IDs
// are an error; the message deliberately does not name the ID.
func (s *Service) ClearSession(sessionID string) error {
	if !s.store.Delete(sessionID) {
		return &session.NotFoundError{}
	}
	s.log.Info("session cleared", "session", sessionID)
	return nil
}

// rendered encodes a mask set into the base64 PNG form responses carry.
func rendered(masks []*imaging.Mask) ([]string, error) {
	out := make([]string, 0, len(masks))
	for _, m := range masks {
		b64, err := imaging.EncodeMaskPNG(m)
		if err != nil {
			return nil, err
		}
		out = append(out, b64)
	}
	return out, nil
}

// checkMaskGeometry rejects model output whose masks do not match the
// session's image dimensions. A mismatch is an internal fault: stored
// masks must stay croppable against the session image.
func checkMaskGeometry(sess *session.Session, masks []*imaging.Mask) error {
	for i, m := range masks {
		if m.Width != sess.Width || m.Height != sess.Height {
			return &maskGeometryError{
				index: i, gotW: m.Width, gotH: m.Height,
				wantW: sess.Width, wantH: sess.Height,
			}
		}
	}
	return nil
}

type maskGeometryError struct {
	index                    int
	gotW, gotH, wantW, wantH int
}

func (e *maskGeometryError) Error() string {
	return fmt.Sprintf("model returned mask %d sized %dx%d for a %dx%d image",
		e.index, e.gotW, e.gotH, e.wantW, e.wantH)
}

// Box re-exports the model's box type so handlers only import this package.
type Box = model.Box
