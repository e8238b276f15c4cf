package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Sh00ty/stadium-map/internal/models"
)

// CopyFrom quotes identifiers itself, so "row" goes in bare here.
var nodeCopyColumns = []string{
	"id",
	"name",
	"description",
	"x",
	"y",
	"level",
	"type",
	"num_servers",
	"service_rate",
	"block",
	"row",
	"number",
}

var edgeCopyColumns = []string{
	"id",
	"from_id",
	"to_id",
	"weight",
	"accessible",
}

var routeCopyColumns = []string{
	"id",
	"name",
	"description",
	"exit_id",
	"node_ids",
}

// InsertDataset writes nodes, edges, routes and tiles in a single transaction:
// either the whole dataset becomes visible or nothing does.
func (r *Repository) InsertDataset(ctx context.Context, ds models.Dataset, tiles []models.Tile) error {
	return r.writeDataset(ctx, ds, tiles, false)
}

// ReplaceDataset wipes closures, routes, edges, tiles and nodes and writes ds in
// their place within one transaction.
func (r *Repository) ReplaceDataset(ctx context.Context, ds models.Dataset, tiles []models.Tile) error {
	return r.writeDataset(ctx, ds, tiles, true)
}

func (r *Repository) writeDataset(ctx context.Context, ds models.Dataset, tiles []models.Tile, wipe bool) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel: pgx.Serializable,
	})
	if err != nil {
		return fmt.Errorf("failed to start dataset transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if wipe {
		for _, table := range []string{closuresTable, routesTable, edgesTable, tilesTable, nodesTable} {
			_, err = tx.Exec(ctx, fmt.Sprintf("delete from %s;", table))
			if err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
	}

	if err = copyNodes(ctx, tx, ds.Nodes); err != nil {
		return err
	}
	if err = copyEdges(ctx, tx, ds.Edges); err != nil {
		return err
	}
	if err = copyRoutes(ctx, tx, ds.Routes); err != nil {
		return err
	}
	if err = copyTiles(ctx, tx, tiles); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit dataset transaction: %w", err)
	}
	return nil
}

func copyNodes(ctx context.Context, tx pgx.Tx, nodes []models.Node) error {
	if len(nodes) == 0 {
		return nil
	}
	copied, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{nodesTable},
		nodeCopyColumns,
		pgx.CopyFromSlice(len(nodes), func(i int) ([]any, error) {
			n := nodes[i]
			return []any{
				string(n.ID),
				n.Name,
				n.Description,
				n.X,
				n.Y,
				n.Level,
				string(n.Type),
				n.NumServers,
				n.ServiceRate,
				n.Block,
				n.Row,
				n.Number,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to copy nodes: %w", err)
	}
	if int(copied) != len(nodes) {
		return fmt.Errorf("copied %d nodes out of %d", copied, len(nodes))
	}
	return nil
}

func copyEdges(ctx context.Context, tx pgx.Tx, edges []models.Edge) error {
	if len(edges) == 0 {
		return nil
	}
	copied, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{edgesTable},
		edgeCopyColumns,
		pgx.CopyFromSlice(len(edges), func(i int) ([]any, error) {
			e := edges[i]
			return []any{
				string(e.ID),
				string(e.FromID),
				string(e.ToID),
				e.Weight,
				e.Accessible,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to copy edges: %w", err)
	}
	if int(copied) != len(edges) {
		return fmt.Errorf("copied %d edges out of %d", copied, len(edges))
	}
	return nil
}

func copyRoutes(ctx context.Context, tx pgx.Tx, routes []models.EmergencyRoute) error {
	if len(routes) == 0 {
		return nil
	}
	copied, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{routesTable},
		routeCopyColumns,
		pgx.CopyFromSlice(len(routes), func(i int) ([]any, error) {
			route := routes[i]
			return []any{
				string(route.ID),
				route.Name,
				route.Description,
				string(route.ExitID),
				toStrings(route.NodeIDs),
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to copy emergency routes: %w", err)
	}
	if int(copied) != len(routes) {
		return fmt.Errorf("copied %d emergency routes out of %d", copied, len(routes))
	}
	return nil
}

// GetMap reads nodes, edges and closures from one snapshot.
func (r *Repository) GetMap(ctx context.Context) (models.MapSnapshot, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return models.MapSnapshot{}, fmt.Errorf("failed to start map transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	nodes, err := listNodes(ctx, tx, models.NodeFilter{})
	if err != nil {
		return models.MapSnapshot{}, err
	}
	edges, err := listEdges(ctx, tx)
	if err != nil {
		return models.MapSnapshot{}, err
	}
	closures, err := listClosures(ctx, tx)
	if err != nil {
		return models.MapSnapshot{}, err
	}
	return models.MapSnapshot{
		Nodes:    nodes,
		Edges:    edges,
		Closures: closures,
	}, nil
}
