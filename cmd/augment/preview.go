package main

import (
	"github.com/spf13/cobra"

	"github.com/croplabs/segmentd/internal/augment"
)

func newPreviewCmd() *cobra.Command {
	var (
		imagePath  string
		boxesJSON  string
		labelsJSON string
		boxFormat  string
		ops        []string
		intensity  float64
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Apply augmentations in memory and print a base64 preview",
		RunE: func(cmd *cobra.Command, args []string) error {
			boxes, err := parseBoxes(boxesJSON)
			if err != nil {
				return err
			}
			labels, err := parseLabels(labelsJSON)
			if err != nil {
				return err
			}

			res, err := augment.Process(augment.Request{
				ImagePath: imagePath,
				Boxes:     boxes,
				BoxFormat: boxFormat,
				Labels:    labels,
				Ops:       ops,
				Intensity: intensity,
			})
			if err != nil {
				return err
			}

			emit(resultResponse{Success: true, Result: res})
			return nil
		},
	}

	cmd.Flags().StringVar(&imagePath, "image", "", "Path to the source image")
	cmd.Flags().StringVar(&boxesJSON, "bboxes", "[]", "Bounding boxes as a JSON array of [x1,y1,x2,y2]")
	cmd.Flags().StringVar(&labelsJSON, "labels", "[]", "Box labels as a JSON array of strings")
	cmd.Flags().StringVar(&boxFormat, "bbox-format", "xyxy", "Box coordinate format (xyxy|xywh)")
	cmd.Flags().StringSliceVar(&ops, "augmentations", nil, "Comma separated augmentation names")
	cmd.Flags().Float64Var(&intensity, "intensity", 1.0, "Augmentation strength from 0.0 to 1.0")
	_ = cmd.MarkFlagRequired("image")
	_ = cmd.MarkFlagRequired("bboxes")
	_ = cmd.MarkFlagRequired("labels")
	_ = cmd.MarkFlagRequired("augmentations")

	return cmd
}
