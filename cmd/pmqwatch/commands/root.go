package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"pmqwatch/lib/configutil"
	configlibsql "pmqwatch/lib/configutil/libsql"
	"pmqwatch/lib/notify"
	"pmqwatch/lib/restyutil"
	"pmqwatch/lib/scrapers/twfy"
	"pmqwatch/lib/telemetry"
	"pmqwatch/lib/util/serviceutil"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type ScraperConfig struct {
	BaseUrl string `json:"base_url"`
	// bound on in-flight fetches
	Concurrency int `json:"concurrency"`
	// milliseconds between consecutive requests
	MinRequestIntervalMs int `json:"min_request_interval_ms"`
	// where per-edition and combined csv artifacts go
	OutputDir string `json:"output_dir"`
	// when set, full request/response dumps land here and debug
	// logging turns on
	DebugHttpDir string `json:"debug_http_dir"`
}

type Config struct {
	Scraper  ScraperConfig       `json:"scraper"`
	Database configlibsql.Struct `json:"database"`
	Notifier notify.SmtpConfig   `json:"notifier"`
	// theyworkforyou api key for the search command, the
	// THEY_WORK_FOR_YOU_API_KEY env var takes priority
	ApiKey string `json:"api_key"`
}

var configPath string
var config Config

var rootCmd = &cobra.Command{
	Use:   "pmqwatch",
	Short: "pmqwatch scrapes UK parliament debate transcripts and extracts Prime Minister's Questions sessions from them.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json5", "path to the configuration file")
}

func Execute() {
	ctx := serviceutil.SignalContext()

	telemetry.InitSlog(false)
	// the .env is optional, it only carries the api key on dev machines
	godotenv.Load()

	cobra.OnInitialize(func() {
		loaded, err := configutil.ReadConfig[Config](configPath)
		if err != nil && !os.IsNotExist(err) {
			serviceutil.Fatal("failed to read config", err)
		}
		config = loaded
		applyConfigDefaults(&config)
		if config.Scraper.DebugHttpDir != "" {
			telemetry.InitSlog(true)
		}
	})

	tel, err := telemetry.SetupFromEnv(ctx, "pmqwatch")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	if err == nil {
		defer tel.Shutdown(context.Background())
		telemetry.InstrumentPerfStats(ctx)
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func applyConfigDefaults(c *Config) {
	if c.Scraper.Concurrency <= 0 {
		c.Scraper.Concurrency = 4
	}
	if c.Scraper.MinRequestIntervalMs <= 0 {
		c.Scraper.MinRequestIntervalMs = 500
	}
	if c.Scraper.OutputDir == "" {
		c.Scraper.OutputDir = "data/debates_raw"
	}
	if c.Database.File == "" && c.Database.Url == "" {
		c.Database.File = "data/pmqwatch.db"
	}
}

func newScraperClient() (*twfy.Client, error) {
	opts := twfy.ClientOptions{
		BaseUrl:            config.Scraper.BaseUrl,
		MinRequestInterval: time.Duration(config.Scraper.MinRequestIntervalMs) * time.Millisecond,
	}
	if config.Scraper.DebugHttpDir != "" {
		opts.InstrumentOutput = restyutil.NewFilesystemOutput(config.Scraper.DebugHttpDir)
	}
	return twfy.NewClient(opts)
}

func apiKey() string {
	if key := os.Getenv("THEY_WORK_FOR_YOU_API_KEY"); key != "" {
		return key
	}
	return config.ApiKey
}
