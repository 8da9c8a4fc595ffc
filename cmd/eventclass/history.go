package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"eventclass/internal/store"
)

func historyCommand(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent pipeline and command runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.Open(a.cfg.StorePath)
			if err != nil {
				return err
			}
			defer s.Close()

			runs, err := s.Recent(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs recorded")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "WHEN\tSTAGE\tROWS\tLABELED\tFILLED\tCONFLICTS\tOUTPUT")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d->%d\t%d\t%d\t%s\n",
					r.FinishedAt.Format("2006-01-02 15:04"),
					r.Stage, r.Rows, r.LabeledIn, r.LabeledOut,
					r.Filled, r.Conflicts, r.Output)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	return cmd
}
