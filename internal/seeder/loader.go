package seeder

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sh00ty/stadium-map/internal/grid"
	"github.com/Sh00ty/stadium-map/internal/metrics"
	"github.com/Sh00ty/stadium-map/internal/models"
)

type Store interface {
	InsertDataset(ctx context.Context, ds models.Dataset, tiles []models.Tile) error
	ReplaceDataset(ctx context.Context, ds models.Dataset, tiles []models.Tile) error
}

type Summary struct {
	Nodes  int
	Edges  int
	Routes int
	Tiles  int
	ByType map[models.NodeType]int
}

type Loader struct {
	store    Store
	grid     grid.Manager
	metrics  metrics.Metrics
	log      zerolog.Logger
	generate func() models.Dataset
}

func NewLoader(store Store, gridManager grid.Manager, m metrics.Metrics) *Loader {
	if m == nil {
		m = metrics.Nop{}
	}
	return &Loader{
		store:    store,
		grid:     gridManager,
		metrics:  m,
		log:      log.With().Str("component", "seeder").Logger(),
		generate: GenerateStadium,
	}
}

// Load writes the seed dataset into an empty database.
func (l *Loader) Load(ctx context.Context) error {
	_, err := l.Seed(ctx)
	return err
}

func (l *Loader) Seed(ctx context.Context) (Summary, error) {
	return l.write(ctx, l.store.InsertDataset, "seed")
}

// Reload drops everything stored, closures included, and writes the seed
// dataset again.
func (l *Loader) Reload(ctx context.Context) (Summary, error) {
	return l.write(ctx, l.store.ReplaceDataset, "reload")
}

func (l *Loader) write(
	ctx context.Context,
	writeFn func(context.Context, models.Dataset, []models.Tile) error,
	op string,
) (Summary, error) {
	started := time.Now()

	ds := l.generate()
	tiles := l.grid.Build(ds.Nodes)
	l.log.Info().Msgf("%s: generated %d nodes, %d edges, %d tiles", op, len(ds.Nodes), len(ds.Edges), len(tiles))

	err := writeFn(ctx, ds, tiles)
	if err != nil {
		l.metrics.Increment("seeder." + op + ".failed")
		return Summary{}, fmt.Errorf("failed to %s stadium dataset: %w", op, err)
	}
	l.metrics.Duration("seeder."+op, time.Since(started))

	summary := Summary{
		Nodes:  len(ds.Nodes),
		Edges:  len(ds.Edges),
		Routes: len(ds.Routes),
		Tiles:  len(tiles),
		ByType: ds.CountByType(),
	}
	l.logSummary(op, summary)
	return summary, nil
}

func (l *Loader) logSummary(op string, s Summary) {
	l.log.Info().
		Int("corridors", s.ByType[models.NodeTypeCorridor]).
		Int("row_aisles", s.ByType[models.NodeTypeRowAisle]).
		Int("gates", s.ByType[models.NodeTypeGate]).
		Int("seats", s.ByType[models.NodeTypeSeat]).
		Int("stairs", s.ByType[models.NodeTypeStairs]).
		Int("ramps", s.ByType[models.NodeTypeRamp]).
		Int("nodes", s.Nodes).
		Int("edges", s.Edges).
		Int("emergency_routes", s.Routes).
		Int("tiles", s.Tiles).
		Msgf("%s: stadium dataset stored", op)
}
