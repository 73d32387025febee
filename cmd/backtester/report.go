package main

import (
	"github.com/spf13/cobra"

	"stoxxBacktester/internal/app"
)

var reportBatch int64

func init() {
	reportCmd.Flags().Int64Var(&reportBatch, "batch", 0, "batch number to report (0 = latest)")
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the stored results for a batch",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup()
		if err != nil {
			return err
		}
		defer d.repo.Close()

		provider, err := newProvider(d.cfg, d.logger)
		if err != nil {
			return err
		}

		svc, err := app.NewBatchService(d.cfg, d.logger, provider, d.repo, d.repo, d.repo)
		if err != nil {
			return err
		}

		report, err := svc.Report(cmd.Context(), reportBatch)
		if err != nil {
			return err
		}

		printReport(report)
		return nil
	},
}
