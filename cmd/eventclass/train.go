package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"eventclass/internal/classify"
	"eventclass/internal/dataset"
	"eventclass/internal/store"
)

func trainCommand(a *app) *cobra.Command {
	var (
		modelOut  string
		propagate bool
		collapse  bool
		seed      int64
		minRows   int
		cols      dataset.Columns
	)

	cmd := &cobra.Command{
		Use:   "train <labeled.csv|labeled.json>",
		Short: "Train the community-event classifier on a labeled table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()
			t, err := dataset.Load(args[0])
			if err != nil {
				return err
			}
			if modelOut == "" {
				modelOut = a.cfg.ModelPath
			}

			artifact, err := classify.Train(t, classify.Options{
				Columns:               cols,
				MinLabeledRows:        minRows,
				PropagateSeriesLabels: propagate,
				CollapseSeries:        collapse,
				Seed:                  seed,
			})
			if err != nil {
				return err
			}
			if err := artifact.Save(modelOut); err != nil {
				return err
			}

			m := artifact.Metrics
			fmt.Printf("trained on %d labeled rows (%d community, %d not) -> %s\n",
				m.LabeledRows, m.Positives, m.Negatives, modelOut)
			if m.HeldOut {
				for _, r := range m.Report {
					fmt.Printf("  %-14s precision=%.3f recall=%.3f f1=%.3f support=%d\n",
						r.Class, r.Precision, r.Recall, r.F1, r.Support)
				}
			} else {
				fmt.Println("  too few series for a held-out split; fitted on all labeled rows")
			}

			a.recordRun(store.Run{
				Stage:      "train",
				Input:      args[0],
				Output:     modelOut,
				Rows:       len(t.Rows),
				LabeledIn:  m.LabeledRows,
				LabeledOut: m.LabeledRows,
				StartedAt:  started,
				FinishedAt: time.Now(),
			})
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelOut, "model", "m", "", "Model artifact output path (default from config)")
	cmd.Flags().BoolVar(&propagate, "propagate-series-labels", false, "Run strict series propagation before training")
	cmd.Flags().BoolVar(&collapse, "collapse-series", false, "Train on one representative row per series")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for the train/validation split")
	cmd.Flags().IntVar(&minRows, "min-labeled", 5, "Minimum labeled rows required")
	columnFlags(cmd, &cols)
	return cmd
}
