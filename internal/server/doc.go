// Package server implements the newline-delimited JSON command loop that
// drives the segmentation service.
//
// The host process (typically an editor plugin or annotation tool) launches
// the binary, writes one JSON command object per line to stdin, and reads
// one JSON response object per line from stdout. Diagnostics go to the
// logger and never to the response stream.
//
// # Protocol
//
// On startup the server writes a single ready signal before reading any
// input:
//
//	{"status":"ready"}
//
// After that, every input line produces exactly one response line, in
// arrival order. Responses always carry a "success" boolean; failures add
// an "error" string and successes add command-specific fields.
//
// Supported commands:
//   - load_image: decode an image from disk and open a session on it
//   - predict_click: point-prompted segmentation within a session
//   - predict_text: text-prompted instance segmentation within a session
//   - crop_from_mask: cut a predicted mask region out to a PNG file
//   - clear_session: discard a session
//   - ping: health check
//
// # Error Handling
//
// A line that does not parse as JSON yields {"success":false,"error":
// "Invalid JSON"}; an unrecognized command yields "Unknown command: <name>".
// Handler failures are reported the same way, with the error text taken
// verbatim from the failing operation. No failure terminates the loop;
// only end of input or a read error does.
//
// # Usage
//
//	svc := segmentation.New(session.NewMemoryStore(), backend, logger)
//	srv := server.New(svc, logger)
//	if err := srv.Run(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// Run reads os.Stdin and writes os.Stdout unless redirected with
// SetStreams, which the tests use to drive the loop over in-memory
// buffers.
package server
