package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"stoxxBacktester/internal/adapters/logger" // Import the logger package for LogLevel
)

// Provider names accepted for PRICE_PROVIDER.
const (
	ProviderYahoo   = "yahoo"
	ProviderBinance = "binance"
	ProviderCSV     = "csv"
)

// Config holds all application configuration.
type Config struct {
	// Database
	DBPath string

	// Simulation Parameters
	StartingCapital float64 // Equity curve starting capital (e.g., 100000)
	PositionSize    float64 // Fixed number of units bought per fill
	Commission      float64 // Proportional commission applied on entry and exit fills
	LeadDays        int     // Bars fetched before the signal entry date
	TrailDays       int     // Bars fetched after the signal entry date
	Workers         int     // Concurrent per-ticker simulations

	// Price Provider
	PriceProvider string // "yahoo", "binance" or "csv"
	BarCacheDir   string // Directory of cached bar CSVs (csv provider, fetch command)

	// Binance API (only needed when PriceProvider is "binance")
	BinanceAPIKey    string
	BinanceSecretKey string
	BinanceTestnet   bool

	// Logging
	LogLevel logger.LogLevel // Use the LogLevel type from the logger adapter
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/backteststoxx.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}

	// Simulation Parameters
	cfg.StartingCapital, err = getEnvAsFloatRequired("STARTING_CAPITAL", 100000.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid STARTING_CAPITAL: %v", err))
	} else if cfg.StartingCapital <= 0 {
		errs = append(errs, "STARTING_CAPITAL must be positive")
	}

	cfg.PositionSize, err = getEnvAsFloatRequired("POSITION_SIZE", 10.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid POSITION_SIZE: %v", err))
	} else if cfg.PositionSize <= 0 {
		errs = append(errs, "POSITION_SIZE must be positive")
	}

	cfg.Commission, err = getEnvAsFloatRequired("COMMISSION", 0.002)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid COMMISSION: %v", err))
	} else if cfg.Commission < 0 || cfg.Commission >= 1.0 {
		errs = append(errs, "COMMISSION must be in [0.0, 1.0)")
	}

	cfg.LeadDays = getEnvAsInt("LEAD_DAYS", 60)
	cfg.TrailDays = getEnvAsInt("TRAIL_DAYS", 180)
	if cfg.LeadDays < 0 || cfg.TrailDays < 0 {
		errs = append(errs, "LEAD_DAYS and TRAIL_DAYS cannot be negative")
	}

	cfg.Workers = getEnvAsInt("WORKERS", 4)
	if cfg.Workers <= 0 {
		errs = append(errs, "WORKERS must be positive")
	}

	// Price Provider
	cfg.PriceProvider = strings.ToLower(getEnv("PRICE_PROVIDER", ProviderYahoo))
	switch cfg.PriceProvider {
	case ProviderYahoo, ProviderBinance, ProviderCSV:
	default:
		errs = append(errs, fmt.Sprintf("unknown PRICE_PROVIDER %q (want yahoo, binance or csv)", cfg.PriceProvider))
	}

	cfg.BarCacheDir = getEnv("BAR_CACHE_DIR", "./data/bars")
	if cfg.PriceProvider == ProviderCSV && cfg.BarCacheDir == "" {
		errs = append(errs, "BAR_CACHE_DIR must be set when PRICE_PROVIDER is csv")
	}

	// Binance API (optional unless the binance provider is selected)
	cfg.BinanceAPIKey = getEnv("BINANCE_API_KEY", "")
	cfg.BinanceSecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.BinanceTestnet = getEnvAsBool("BINANCE_TESTNET", false)

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Log warning? For non-required fields, default is often acceptable.
		return defaultValue
	}
	return value
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
