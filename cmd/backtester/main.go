package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"stoxxBacktester/config"
	"stoxxBacktester/internal/adapters/binanceclient"
	"stoxxBacktester/internal/adapters/csvprovider"
	"stoxxBacktester/internal/adapters/logger"
	"stoxxBacktester/internal/adapters/sqlite"
	"stoxxBacktester/internal/adapters/yahooclient"
	"stoxxBacktester/internal/ports"
)

var rootCmd = &cobra.Command{
	Use:   "backtester",
	Short: "Simulate historical trade signals against daily price history",
	Long: `backtester replays buy/stop/target trade signals against actual daily
OHLC history, scores each signal, and stores per-ticker results tagged
with an incrementing batch number.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(runCmd, reportCmd, fetchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// deps bundles the wiring shared by all subcommands.
type deps struct {
	cfg    *config.Config
	logger *logger.StdLogger
	repo   *sqlite.Repository
}

func setup() (*deps, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger := logger.NewStdLogger(cfg.LogLevel)

	repo, err := sqlite.NewRepository(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}

	return &deps{cfg: cfg, logger: appLogger, repo: repo}, nil
}

// newProvider builds the configured price provider.
func newProvider(cfg *config.Config, appLogger ports.Logger) (ports.PriceProvider, error) {
	switch cfg.PriceProvider {
	case config.ProviderYahoo:
		return yahooclient.New(yahooclient.Config{Logger: appLogger})
	case config.ProviderBinance:
		return binanceclient.New(binanceclient.Config{
			APIKey:     cfg.BinanceAPIKey,
			SecretKey:  cfg.BinanceSecretKey,
			UseTestnet: cfg.BinanceTestnet,
			Logger:     appLogger,
		})
	case config.ProviderCSV:
		return csvprovider.New(csvprovider.Config{Dir: cfg.BarCacheDir, Logger: appLogger})
	default:
		return nil, fmt.Errorf("unknown price provider %q", cfg.PriceProvider)
	}
}
