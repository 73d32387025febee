package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"stoxxBacktester/internal/app"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulation batch over all stored signals",
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

		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		report, err := svc.Run(ctx)
		if err != nil {
			return err
		}

		printReport(report)
		return nil
	},
}

func printReport(report *app.BatchReport) {
	fmt.Printf("\nBACKTEST RESULTS SUMMARY (batch %d)\n", report.Batch)
	fmt.Println("============================================================")
	for _, s := range report.Stats {
		fmt.Printf("\n%s:\n", s.Ticker)
		fmt.Printf("  Return:        %8.2f%%\n", s.TotalReturnPct)
		fmt.Printf("  Win Rate:      %8.2f%%\n", s.WinRatePct)
		fmt.Printf("  Max Drawdown:  %8.2f%%\n", s.MaxDrawdownPct)
		fmt.Printf("  Sharpe Ratio:  %8.2f\n", s.SharpeRatio)
		fmt.Printf("  Exposure:      %8.2f%%\n", s.ExposureTimePct)
		fmt.Printf("  Buy & Hold:    %8.2f%%\n", s.BuyHoldReturnPct)
		fmt.Printf("  Trades:        %8d\n", s.Trades)
		fmt.Printf("  Final Equity:  %10.2f\n", s.FinalEquity)
	}

	sum := report.Summary
	fmt.Println("\nPORTFOLIO SUMMARY")
	fmt.Println("==============================")
	fmt.Printf("Tickers with results: %d\n", sum.TickersWithData)
	fmt.Printf("Total trades:         %d\n", sum.TotalTrades)
	fmt.Printf("Weighted avg return:  %.2f%%\n", sum.WeightedReturn)
	fmt.Printf("Successful runs:      %d/%d\n", sum.TickersWithData, sum.TickersAttempted)
	if len(report.FailedTickers) > 0 {
		fmt.Printf("Failed tickers:       %v\n", report.FailedTickers)
	}
}
