package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/user/job-harvester/internal/config"
	"github.com/user/job-harvester/internal/harvest"
	"github.com/user/job-harvester/internal/monitoring"
	"github.com/user/job-harvester/pkg/logger"
	"go.uber.org/zap"
)

const loggerName = "JobScraper"

var (
	cfg           *config.Config
	log           *zap.Logger
	loggerCleanup func()
)

var rootCmd = &cobra.Command{
	Use:           "harvester",
	Short:         "harvester collects job listings from LinkedIn search results.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("could not load config: %w", err)
		}
		log, loggerCleanup, err = logger.New(logger.Options{
			Level:    cfg.LogLevel,
			FilePath: cfg.LogFile,
			Name:     loggerName,
		})
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error).")
	rootCmd.PersistentFlags().String("log-file", "scraper.log", "File the log is appended to.")
	_ = viper.BindPFlag("LOG_LEVEL", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("LOG_FILE", rootCmd.PersistentFlags().Lookup("log-file"))
}

func ExecuteContext(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	if loggerCleanup != nil {
		loggerCleanup()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newHarvester assembles the page walker from the loaded config.
func newHarvester(m *monitoring.Metrics) (*harvest.Harvester, error) {
	extractor, err := harvest.NewExtractor(harvest.DefaultSelectors, cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	fetcher := harvest.NewRestyFetcher(cfg.RequestTimeout)
	return harvest.NewHarvester(fetcher, extractor, m, log, harvest.Options{
		BaseURL:        cfg.BaseURL,
		RequestTimeout: cfg.RequestTimeout,
		MinDelay:       time.Duration(cfg.MinDelay) * time.Second,
		MaxDelay:       time.Duration(cfg.MaxDelay) * time.Second,
	}), nil
}
