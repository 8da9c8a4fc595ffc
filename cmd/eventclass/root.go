package main

import (
	"github.com/spf13/cobra"

	"eventclass/internal/config"
	"eventclass/internal/dataset"
	appLog "eventclass/internal/log"
)

// app carries the loaded configuration into every subcommand.
type app struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func rootCommand() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "eventclass",
		Short: "Chamber calendar scraper and community event classifier",
		Long: `eventclass scrapes chamber-of-commerce calendar feeds, classifies
events as community vs. business, and propagates labels across
recurring event series.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			if a.logLevel != "" {
				cfg.LogLevel = a.logLevel
			}
			appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "eventclass.yaml", "Path to config file")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override log level (debug/info/warn/error)")

	cmd.AddCommand(
		fetchCommand(a),
		trainCommand(a),
		tagCommand(a),
		propagateCommand(a),
		mergeCommand(a),
		runCommand(a),
		historyCommand(a),
	)
	return cmd
}

// columnFlags wires the shared column-mapping flags and returns the
// mapping they override.
func columnFlags(cmd *cobra.Command, cols *dataset.Columns) {
	*cols = dataset.DefaultColumns()
	cmd.Flags().StringVar(&cols.ID, "id-col", cols.ID, "Event id column")
	cmd.Flags().StringVar(&cols.URL, "url-col", cols.URL, "Event URL column")
	cmd.Flags().StringVar(&cols.Title, "title-col", cols.Title, "Title column")
	cmd.Flags().StringVar(&cols.Desc, "desc-col", cols.Desc, "Description column")
	cmd.Flags().StringVar(&cols.Start, "start-col", cols.Start, "Start time column")
	cmd.Flags().StringVar(&cols.Loc, "loc-col", cols.Loc, "Location column")
	cmd.Flags().StringVar(&cols.Label, "label-col", cols.Label, "Label column")
}
