package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"eventclass/internal/dataset"
	"eventclass/internal/model"
	"eventclass/internal/series"
	"eventclass/internal/store"
)

func propagateCommand(a *app) *cobra.Command {
	var (
		out      string
		modeName string
		cols     dataset.Columns
	)

	cmd := &cobra.Command{
		Use:   "propagate <events.csv|events.json>",
		Short: "Fill label gaps across recurring event series",
		Long: `Group events into series and copy labels to unlabeled members.
Strict mode fills a gap only when every labeled member of the series
agrees; majority mode fills with the most common label and reports the
disagreement. Existing labels are never overwritten.`,
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
				out = dataset.DerivedPath(args[0], "_filled")
			}

			before := series.CountLabeled(t, cols.Label)
			res := series.PropagateTable(t, cols, cols.Label, mode)
			after := series.CountLabeled(t, cols.Label)

			if err := dataset.Save(t, out); err != nil {
				return err
			}

			fmt.Printf("labeled %d -> %d rows (%d filled, %d still unlabeled, %s mode) -> %s\n",
				before, after, res.FilledCount(), len(t.Rows)-after, modeName, out)
			for _, c := range res.Conflicts {
				fmt.Printf("  conflict: series %q has labels {%s} across %d events\n",
					c.Key, joinLabels(c.Labels), c.Members)
			}

			a.recordRun(store.Run{
				Stage:      "propagate",
				Input:      args[0],
				Output:     out,
				Rows:       len(t.Rows),
				LabeledIn:  before,
				LabeledOut: after,
				Filled:     res.FilledCount(),
				Conflicts:  len(res.Conflicts),
				Notes:      modeName,
				StartedAt:  started,
				FinishedAt: time.Now(),
			})
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default <input>_filled.<ext>)")
	cmd.Flags().StringVar(&modeName, "mode", "", "Propagation mode: strict or majority (default from config)")
	columnFlags(cmd, &cols)
	return cmd
}

func joinLabels(labels []model.Label) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = l.String()
	}
	return strings.Join(parts, ", ")
}
