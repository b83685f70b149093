package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/user/job-harvester/internal/monitoring"
	"github.com/user/job-harvester/internal/output"
	"github.com/user/job-harvester/internal/repository"
	"github.com/user/job-harvester/internal/storage"
	"github.com/user/job-harvester/internal/usecase"
	"go.uber.org/zap"
)

var persist bool

func init() {
	flags := runCmd.Flags()
	flags.StringSlice("keyword", nil, "Job title to search for. Repeat or comma-separate for several.")
	flags.StringSlice("location", nil, "Location to search in. Repeat or comma-separate for several.")
	flags.Int("pages", 2, "Maximum result pages per query.")
	flags.String("output", "multi_jobs_data.json", "Path of the JSON output file.")
	flags.BoolVar(&persist, "persist", false, "Also store new listings in PostgreSQL.")

	_ = viper.BindPFlag("HARVEST_KEYWORDS", flags.Lookup("keyword"))
	_ = viper.BindPFlag("HARVEST_LOCATIONS", flags.Lookup("location"))
	_ = viper.BindPFlag("HARVEST_MAX_PAGES", flags.Lookup("pages"))
	_ = viper.BindPFlag("HARVEST_OUTPUT_PATH", flags.Lookup("output"))

	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run [--keyword <title>]... [--location <place>]... [--pages N] [--output <file.json>]",
	Short: "Runs one harvest and writes the listings to a JSON file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		metrics := monitoring.NewMetrics(nil)

		harvester, err := newHarvester(metrics)
		if err != nil {
			return err
		}
		writer := output.NewJSONWriter(cfg.OutputPath, log)

		var jobs repository.JobRepository
		if persist {
			pgStore, err := storage.NewPostgresStore(ctx, cfg.PostgresURL)
			if err != nil {
				return err
			}
			defer pgStore.Close()
			if err := pgStore.EnsureSchema(ctx); err != nil {
				return err
			}
			jobs = pgStore
		}

		uc := usecase.NewHarvestUseCase(harvester, writer, jobs, nil, metrics, log, cfg.RunLockTTL, usecase.RunOptions{
			Keywords:  cfg.Keywords,
			Locations: cfg.Locations,
			MaxPages:  cfg.MaxPages,
		})

		// Ingest failures are logged by the run and do not change the exit status.
		summary, err := uc.RunDefault(ctx)
		if err != nil && summary == nil {
			return err
		}
		log.Info("Scraping completed",
			zap.Int("jobs", summary.Harvested),
			zap.Int("inserted", summary.Inserted),
			zap.Bool("output_written", summary.OutputWritten),
			zap.String("output", writer.Path()))
		return nil
	},
}
