package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/croplabs/segmentd/internal/augment"
)

// resultResponse wraps a single augmentation result with the success
// flag hosts dispatch on. The embedded result flattens into the same
// JSON object.
type resultResponse struct {
	Success bool `json:"success"`
	*augment.Result
}

type batchResponse struct {
	Success bool `json:"success"`
	*augment.BatchResult
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// emit writes v to stdout as one JSON line.
func emit(v interface{}) {
	if err := json.NewEncoder(os.Stdout).Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}

func parseBoxes(s string) ([][]float64, error) {
	if s == "" {
		return nil, nil
	}
	var boxes [][]float64
	if err := json.Unmarshal([]byte(s), &boxes); err != nil {
		return nil, fmt.Errorf("cannot parse --bboxes: %w", err)
	}
	return boxes, nil
}

func parseLabels(s string) ([]string, error) {
	if s == "" {
		return nil, nil
	}
	var labels []string
	if err := json.Unmarshal([]byte(s), &labels); err != nil {
		return nil, fmt.Errorf("cannot parse --labels: %w", err)
	}
	return labels, nil
}
