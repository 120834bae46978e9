// Package segmentation coordinates sessions, the model backend, and mask
// geometry into the five operations the protocol exposes: load an image,
// predict from points, predict from text, crop from a stored mask, and
// clear a session.
//
// The package owns all session bookkeeping rules: which prediction results
// get stored, which logits are kept for refinement, and what each failure
// looks like to the client. Handlers above it only translate between wire
// JSON and these calls; the model below it only answers prompts.
//
// # Errors
//
// Operations return typed errors whose strings are the exact texts the
// wire contract promises. The dispatcher serializes err.Error() verbatim,
// so nothing here may reword a message without breaking clients.
package segmentation
