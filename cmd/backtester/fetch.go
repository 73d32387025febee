package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"stoxxBacktester/internal/utils"
)

var (
	fetchStart string
	fetchEnd   string
)

func init() {
	fetchCmd.Flags().StringVar(&fetchStart, "start", "", "window start (YYYY-MM-DD)")
	fetchCmd.Flags().StringVar(&fetchEnd, "end", "", "window end (YYYY-MM-DD, default today)")
	fetchCmd.MarkFlagRequired("start")
}

var fetchCmd = &cobra.Command{
	Use:   "fetch TICKER [TICKER...]",
	Short: "Download daily bars and cache them as CSV for offline runs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup()
		if err != nil {
			return err
		}
		defer d.repo.Close()

		start, err := time.Parse("2006-01-02", fetchStart)
		if err != nil {
			return fmt.Errorf("invalid --start date %q: %w", fetchStart, err)
		}
		end := time.Now().UTC()
		if fetchEnd != "" {
			end, err = time.Parse("2006-01-02", fetchEnd)
			if err != nil {
				return fmt.Errorf("invalid --end date %q: %w", fetchEnd, err)
			}
		}

		provider, err := newProvider(d.cfg, d.logger)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(d.cfg.BarCacheDir, 0755); err != nil {
			return fmt.Errorf("failed to create bar cache dir: %w", err)
		}

		for _, ticker := range args {
			bars, err := provider.GetDailyBars(cmd.Context(), ticker, start, end)
			if err != nil {
				d.logger.Error(cmd.Context(), err, "Failed to fetch bars", map[string]interface{}{"ticker": ticker})
				continue
			}
			path := filepath.Join(d.cfg.BarCacheDir, ticker+".csv")
			if err := utils.WriteBarsToCSV(bars, path); err != nil {
				d.logger.Error(cmd.Context(), err, "Failed to write bar CSV", map[string]interface{}{"ticker": ticker, "path": path})
				continue
			}
			fmt.Printf("cached %d bars for %s to %s\n", len(bars), ticker, path)
		}
		return nil
	},
}
