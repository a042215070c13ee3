package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/evyataryagoni/voterlocation/internal/config"
	"github.com/evyataryagoni/voterlocation/internal/geo"
	"github.com/evyataryagoni/voterlocation/internal/logger"
)

// load-redis loads voter IP locations from CSV into Redis for GEO_PROVIDER=redis.
// Usage: go run ./cmd/load-redis --csv ./data/voter_locations.csv
func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

type loadOptions struct {
	csvPath       string
	redisAddr     string
	redisPassword string
	redisDB       int
	timeout       time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &loadOptions{}

	cmd := &cobra.Command{
		Use:          "load-redis",
		Short:        "Load voter IP locations from CSV into Redis",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return applyConfigDefaults(cmd, opts)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLoad(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.csvPath, "csv", "", "CSV file with ip,city,state,postal_code rows (default GEO_CSV_PATH)")
	flags.StringVar(&opts.redisAddr, "redis-addr", "", "Redis address (default REDIS_ADDR)")
	flags.StringVar(&opts.redisPassword, "redis-password", "", "Redis password (default REDIS_PASSWORD)")
	flags.IntVar(&opts.redisDB, "redis-db", 0, "Redis database (default REDIS_DB)")
	flags.DurationVar(&opts.timeout, "timeout", time.Minute, "Overall load timeout")

	return cmd
}

// applyConfigDefaults fills flags the user did not set from the environment
func applyConfigDefaults(cmd *cobra.Command, opts *loadOptions) error {
	appConfig, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("csv") {
		opts.csvPath = appConfig.GeoCSVPath
	}
	if !flags.Changed("redis-addr") {
		opts.redisAddr = appConfig.RedisAddr
	}
	if !flags.Changed("redis-password") {
		opts.redisPassword = appConfig.RedisPassword
	}
	if !flags.Changed("redis-db") {
		opts.redisDB = appConfig.RedisDB
	}
	return nil
}

func runLoad(ctx context.Context, opts *loadOptions) error {
	log := logger.NewDefault().WithComponent("load-redis")

	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	log.Info().Str("addr", opts.redisAddr).Msg("Connecting to Redis")
	redisProvider, err := geo.NewRedisProvider(opts.redisAddr, opts.redisPassword, opts.redisDB)
	if err != nil {
		return err
	}
	defer redisProvider.Close()

	log.Info().Str("csv", opts.csvPath).Msg("Loading locations")
	loaded, err := redisProvider.LoadFromCSV(ctx, opts.csvPath)
	if err != nil {
		return fmt.Errorf("failed to load CSV data: %w", err)
	}

	log.Info().Int("records", loaded).Msg("Locations loaded, start the server with GEO_PROVIDER=redis")
	return nil
}
