package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	nodesTable    = "nodes"
	edgesTable    = "edges"
	closuresTable = "closures"
	tilesTable    = "tiles"
	routesTable   = "emergency_routes"
)

type Config struct {
	User     string
	Password string
	Host     string
	Port     uint16
	Database string
	MaxConns int32
}

func (c Config) dsn() string {
	maxConns := c.MaxConns
	if maxConns <= 0 {
		maxConns = 15
	}
	dbName := c.Database
	if dbName == "" {
		dbName = "postgres"
	}
	return fmt.Sprintf(
		"user=%s password=%s host=%s port=%d dbname=%s sslmode=disable pool_max_conns=%d",
		c.User, c.Password, c.Host, c.Port, dbName, maxConns,
	)
}

type Repository struct {
	db *pgxpool.Pool
}

// NewRepo creates the pool without touching the database: connections are
// opened lazily, so the repo can be built while postgres is still starting.
func NewRepo(ctx context.Context, cfg Config) (*Repository, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	return &Repository{
		db: pool,
	}, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	err := r.db.Ping(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping db: %w", err)
	}
	return nil
}

func (r *Repository) Close() {
	r.db.Close()
}

func (r *Repository) CountNodes(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `select count(*) from nodes;`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count nodes: %w", err)
	}
	return count, nil
}
