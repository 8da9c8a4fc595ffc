package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"eventclass/internal/dataset"
	"eventclass/internal/labels"
	"eventclass/internal/series"
	"eventclass/internal/store"
)

func mergeCommand(a *app) *cobra.Command {
	var (
		out      string
		modeName string
		cols     dataset.Columns
	)

	cmd := &cobra.Command{
		Use:   "merge <tagged.csv|tagged.json>",
		Short: "Merge manual labels with model predictions and propagate",
		Long: `Fill empty label cells from the predicted_label column, then
propagate labels across series. Manual labels always win; rows filled
from the model are stamped with label_source=model_prediction.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()
			t, err := dataset.Load(args[0])
			if err != nil {
				return err
			}
			if modeName == "" {
				modeName = a.cfg.PropagationMode
			}
			mode, err := series.ParseMode(modeName)
			if err != nil {
				return err
			}
			if out == "" {
				out = dataset.DerivedPath(args[0], "_merged")
			}

			before := series.CountLabeled(t, cols.Label)
			fromModel := labels.MergeTable(t, cols)
			res := series.PropagateTable(t, cols, cols.Label, mode)
			after := series.CountLabeled(t, cols.Label)

			if err := dataset.Save(t, out); err != nil {
				return err
			}

			fmt.Printf("labeled %d -> %d rows (%d from model, %d propagated, %d still unlabeled) -> %s\n",
				before, after, fromModel, res.FilledCount(), len(t.Rows)-after, out)
			for _, c := range res.Conflicts {
				fmt.Printf("  conflict: series %q has labels {%s} across %d events\n",
					c.Key, joinLabels(c.Labels), c.Members)
			}

			a.recordRun(store.Run{
				Stage:      "merge",
				Input:      args[0],
				Output:     out,
				Rows:       len(t.Rows),
				LabeledIn:  before,
				LabeledOut: after,
				Filled:     fromModel + res.FilledCount(),
				Conflicts:  len(res.Conflicts),
				Notes:      modeName,
				StartedAt:  started,
				FinishedAt: time.Now(),
			})
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default <input>_merged.<ext>)")
	cmd.Flags().StringVar(&modeName, "mode", "", "Propagation mode: strict or majority (default from config)")
	columnFlags(cmd, &cols)
	return cmd
}
