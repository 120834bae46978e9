package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/croplabs/segmentd/internal/augment"
)

func newBatchCmd() *cobra.Command {
	var (
		dataPath   string
		outputDir  string
		ops        []string
		variations int
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Generate randomized variations for a whole annotated dataset",
		Long: `Batch reads a JSON file holding an array of items, each with
"image_path", "bboxes" in [x, y, width, height] form, and "labels",
and writes the requested number of randomized variations per image
into the output directory. Items that fail to load or augment are
skipped; the summary counts only what was generated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(dataPath)
			if err != nil {
				return fmt.Errorf("cannot read %s: %w", dataPath, err)
			}
			var items []augment.BatchItem
			if err := json.Unmarshal(raw, &items); err != nil {
				return fmt.Errorf("cannot parse %s: %w", dataPath, err)
			}

			res, err := augment.Batch(items, ops, variations, outputDir, nil)
			if err != nil {
				return err
			}

			emit(batchResponse{Success: true, BatchResult: res})
			return nil
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "Path to the JSON dataset description")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for the generated images")
	cmd.Flags().StringSliceVar(&ops, "augmentations", nil, "Comma separated pool of enabled augmentations")
	cmd.Flags().IntVar(&variations, "variations", 3, "Variations to generate per image")
	_ = cmd.MarkFlagRequired("data")
	_ = cmd.MarkFlagRequired("output-dir")
	_ = cmd.MarkFlagRequired("augmentations")

	return cmd
}
