package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/croplabs/segmentd/internal/logging"
	"github.com/croplabs/segmentd/internal/segmentation"
)

// defaultMaxLineBytes bounds a single request line when no limit is
// configured. Base64 masks go out, not in, so requests stay small; the
// ceiling exists for pathological input.
const defaultMaxLineBytes = 1024 * 1024

// Server reads newline-delimited JSON commands and writes one JSON
// response per command, in arrival order.
type Server struct {
	svc *segmentation.Service
	log *slog.Logger

	in           io.Reader
	out          io.Writer
	maxLineBytes int
}

// request carries only the command name. Each handler re-decodes the full
// line into its own argument struct.
type request struct {
	Command string `json:"command"`
}

// baseResponse is embedded in every response shape so the wire always
// carries a success flag plus either an error or a message.
type baseResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// readySignal is the single line written before the first read.
type readySignal struct {
	Status string `json:"status"`
}

// New creates a server bound to the process streams. Tests redirect them
// with SetStreams.
func New(svc *segmentation.Service, log *slog.Logger) *Server {
	if log == nil {
		log = logging.Nop()
	}
	return &Server{
		svc:          svc,
		log:          log,
		in:           os.Stdin,
		out:          os.Stdout,
		maxLineBytes: defaultMaxLineBytes,
	}
}

// SetStreams redirects the protocol input and output.
func (s *Server) SetStreams(in io.Reader, out io.Writer) {
	s.in = in
	s.out = out
}

// SetMaxLineBytes raises or lowers the request line size limit.
func (s *Server) SetMaxLineBytes(n int) {
	if n > 0 {
		s.maxLineBytes = n
	}
}

// Run emits the ready signal, then serves commands until the input stream
// ends. Command failures are reported on the response stream and never
// stop the loop; only a read or write failure returns an error.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	// Increase buffer size for large requests. The scanner takes the
	// larger of the initial capacity and the max, so cap the initial
	// slice when the configured limit is small.
	initial := 64 * 1024
	if s.maxLineBytes < initial {
		initial = s.maxLineBytes
	}
	buf := make([]byte, 0, initial)
	scanner.Buffer(buf, s.maxLineBytes)

	encoder := json.NewEncoder(s.out)

	if err := encoder.Encode(readySignal{Status: "ready"}); err != nil {
		return fmt.Errorf("failed to write ready signal: %w", err)
	}
	s.log.Info("service ready, waiting for commands")

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		resp := s.handleLine(ctx, line)
		if err := encoder.Encode(resp); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	s.log.Info("input closed, shutting down")
	return nil
}

// handleLine parses one request line and routes it to its handler.
func (s *Server) handleLine(ctx context.Context, line []byte) interface{} {
	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		s.log.Error("failed to parse request", "err", err)
		return errorResponse("Invalid JSON")
	}

	s.log.Debug("received command", "command", req.Command)

	switch req.Command {
	case "load_image":
		return s.handleLoadImage(ctx, line)
	case "predict_click":
		return s.handlePredictClick(ctx, line)
	case "predict_text":
		return s.handlePredictText(ctx, line)
	case "clear_session":
		return s.handleClearSession(line)
	case "crop_from_mask":
		return s.handleCropFromMask(line)
	case "ping":
		return baseResponse{Success: true, Message: "pong"}
	default:
		return errorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func errorResponse(msg string) baseResponse {
	return baseResponse{Success: false, Error: msg}
}
