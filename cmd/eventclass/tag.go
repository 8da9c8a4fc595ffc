package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"eventclass/internal/classify"
	"eventclass/internal/dataset"
	"eventclass/internal/model"
	"eventclass/internal/store"
)

func tagCommand(a *app) *cobra.Command {
	var (
		modelPath string
		out       string
		threshold float64
		cols      dataset.Columns
	)

	cmd := &cobra.Command{
		Use:   "tag <events.csv|events.json>",
		Short: "Classify events with a trained model",
		Long: `Classify every event in the table, writing predicted_label,
svm_margin, confidence and needs_review columns. Predictions whose
confidence falls below the threshold are flagged for review.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()
			t, err := dataset.Load(args[0])
			if err != nil {
				return err
			}
			if modelPath == "" {
				modelPath = a.cfg.ModelPath
			}
			if threshold == 0 {
				threshold = a.cfg.Threshold
			}
			if out == "" {
				out = dataset.DerivedPath(args[0], "_tagged")
			}

			artifact, err := classify.LoadArtifact(modelPath)
			if err != nil {
				return err
			}
			preds, err := artifact.PredictWith(t, cols, threshold)
			if err != nil {
				return err
			}
			classify.Apply(t, preds)
			if err := dataset.Save(t, out); err != nil {
				return err
			}

			community, review := 0, 0
			for _, p := range preds {
				if p.Label == model.LabelCommunity {
					community++
				}
				if p.NeedsReview {
					review++
				}
			}
			fmt.Printf("tagged %d events (%d community, %d below %.2f confidence) -> %s\n",
				len(preds), community, review, threshold, out)

			// List the least confident predictions so a reviewer knows
			// where to start.
			const maxListed = 10
			listed := 0
			for i, p := range preds {
				if !p.NeedsReview || listed >= maxListed {
					continue
				}
				fmt.Printf("  review: %-40.40s label=%s confidence=%.3f\n",
					t.Rows[i].Get(cols.Title), p.Label, p.Confidence)
				listed++
			}
			if review > maxListed {
				fmt.Printf("  ... and %d more flagged rows (see %s)\n", review-maxListed, dataset.ColNeedsReview)
			}

			a.recordRun(store.Run{
				Stage:      "tag",
				Input:      args[0],
				Output:     out,
				Rows:       len(t.Rows),
				StartedAt:  started,
				FinishedAt: time.Now(),
			})
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelPath, "model", "m", "", "Model artifact path (default from config)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default <input>_tagged.<ext>)")
	cmd.Flags().Float64VarP(&threshold, "threshold", "t", 0, "Review threshold on confidence (default from config)")
	columnFlags(cmd, &cols)
	return cmd
}
