package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/vrischmann/envconfig"

	"github.com/Sh00ty/stadium-map/internal/grid"
	"github.com/Sh00ty/stadium-map/internal/metrics"
	"github.com/Sh00ty/stadium-map/internal/repository/postgres"
	"github.com/Sh00ty/stadium-map/internal/seeder"
)

type Config struct {
	DatabaseHost     string `envconfig:"DATABASE_HOST,default=localhost"`
	DatabasePort     uint16 `envconfig:"DATABASE_PORT,default=5432"`
	DatabaseUser     string `envconfig:"DATABASE_USER,default=postgres"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD,default=postgres"`
	DatabaseName     string `envconfig:"DATABASE_NAME,default=postgres"`
}

type options struct {
	clear bool
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "seeder",
		Short: "Load the stadium dataset into postgres",
		Long: `Creates missing tables and writes the stadium graph: corridors, stairs,
ramps, gates, seats and points of interest, together with the grid tiles.

Without --clear the database must not hold any node yet.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts, cmd)
		},
	}
	cmd.Flags().BoolVar(&opts.clear, "clear", false, "drop all nodes, edges, closures and tiles before loading")
	return cmd
}

func run(ctx context.Context, opts *options, cmd *cobra.Command) error {
	cfg := Config{}
	err := envconfig.Init(&cfg)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	repo, err := postgres.NewRepo(ctx, postgres.Config{
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Host:     cfg.DatabaseHost,
		Port:     cfg.DatabasePort,
		Database: cfg.DatabaseName,
		MaxConns: 2,
	})
	if err != nil {
		return err
	}
	defer repo.Close()

	err = repo.EnsureSchema(ctx)
	if err != nil {
		return err
	}

	loader := seeder.NewLoader(repo, grid.NewManager(grid.DefaultConfig()), metrics.Nop{})

	var summary seeder.Summary
	if opts.clear {
		summary, err = loader.Reload(ctx)
	} else {
		count, countErr := repo.CountNodes(ctx)
		if countErr != nil {
			return countErr
		}
		if count > 0 {
			return fmt.Errorf("database already holds %d nodes, run with --clear to reload", count)
		}
		summary, err = loader.Seed(ctx)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(
		cmd.OutOrStdout(),
		"loaded %d nodes, %d edges, %d tiles\n",
		summary.Nodes, summary.Edges, summary.Tiles,
	)
	return nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	err := newRootCommand().ExecuteContext(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("seeder failed")
	}
}
