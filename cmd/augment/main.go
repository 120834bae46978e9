// Package main is the entry point for the augment CLI tool.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var version = "0.2.0"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "augment",
		Short: "Bounding-box-aware image augmentation for dataset preparation",
		Long: `Augment applies randomized flips, rotations, scaling, and color
adjustments to annotated images, remapping every bounding box through
the same transforms and dropping boxes the pipeline pushes out of frame.

Every command prints a single JSON line on stdout so a host process can
drive the tool programmatically; failures are reported the same way
with "success": false.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newPreviewCmd())
	root.AddCommand(newGenerateCmd())
	root.AddCommand(newBatchCmd())

	return root
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		emit(errorResponse{Error: err.Error()})
		os.Exit(1)
	}
}
