// Package model defines the contract between the segmentation service and
// its prediction backends.
//
// A backend precomputes per-image state once via SetImage and then answers
// point and text prompts against that state. The state is opaque to every
// other package: the session layer stores it and hands it back, nothing
// more. Backends must not retain or mutate the images they are given.
//
// Implementations live in subpackages; colorseg is the built-in CPU
// backend, modeltest the scriptable fake for tests.
package model
