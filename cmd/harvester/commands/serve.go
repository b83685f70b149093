package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/user/job-harvester/internal/api"
	"github.com/user/job-harvester/internal/monitoring"
	"github.com/user/job-harvester/internal/output"
	"github.com/user/job-harvester/internal/scheduler"
	"github.com/user/job-harvester/internal/storage"
	"github.com/user/job-harvester/internal/usecase"
	"go.uber.org/zap"
)

func init() {
	flags := serveCmd.Flags()
	flags.String("port", "5000", "Port the job board API listens on.")
	flags.String("schedule", "0 */12 * * *", "Cron schedule for harvests. Empty disables scheduling.")
	_ = viper.BindPFlag("SERVER_PORT", flags.Lookup("port"))
	_ = viper.BindPFlag("HARVEST_SCHEDULE", flags.Lookup("schedule"))

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [--port N] [--schedule <cron>]",
	Short: "Serves the job board API and runs scheduled harvests.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		// Initialize Storage Layer
		pgStore, err := storage.NewPostgresStore(ctx, cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer pgStore.Close()
		if err := pgStore.EnsureSchema(ctx); err != nil {
			return err
		}

		redisStore := storage.NewRedisStore(cfg.RedisAddr)
		defer redisStore.Close()
		if err := redisStore.Ping(ctx); err != nil {
			return err
		}

		// Initialize Monitoring and the harvest run
		metrics := monitoring.NewMetrics(prometheus.DefaultRegisterer)
		harvester, err := newHarvester(metrics)
		if err != nil {
			return err
		}
		uc := usecase.NewHarvestUseCase(
			harvester,
			output.NewJSONWriter(cfg.OutputPath, log),
			pgStore,
			redisStore,
			metrics,
			log,
			cfg.RunLockTTL,
			usecase.RunOptions{Keywords: cfg.Keywords, Locations: cfg.Locations, MaxPages: cfg.MaxPages},
		)

		var sched *scheduler.Scheduler
		if cfg.Schedule != "" {
			sched, err = scheduler.New(cfg.Schedule, uc.RunDefault, log)
			if err != nil {
				return err
			}
			sched.Start()
			log.Info("harvest schedule active", zap.String("schedule", cfg.Schedule))
		}

		// Initialize API Server
		server := api.NewServer(
			cfg.ServerPort,
			pgStore,
			uc,
			map[string]api.Pinger{"postgres": pgStore, "redis": redisStore},
			prometheus.DefaultGatherer,
			metrics,
			log,
		)

		// Graceful Shutdown
		serverErr := make(chan error, 1)
		go func() {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()

		log.Info("server started", zap.String("port", cfg.ServerPort))

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case <-quit:
		case err := <-serverErr:
			log.Error("could not start server", zap.Error(err))
			return err
		}

		log.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if sched != nil {
			if err := sched.Stop(shutdownCtx); err != nil {
				log.Warn("scheduled harvest still running at shutdown", zap.Error(err))
			}
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
			return err
		}

		log.Info("server exiting")
		return nil
	},
}
