package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Sh00ty/stadium-map/internal/models"
)

var tileColumns = []string{
	"id",
	"grid_x",
	"grid_y",
	"level",
	"min_x",
	"max_x",
	"min_y",
	"max_y",
	"walkable",
	"node_ids",
	"poi_ids",
	"seat_ids",
	"gate_ids",
}

func (r *Repository) ListTiles(ctx context.Context, level *int) ([]models.Tile, error) {
	builder := squirrel.Select(tileColumns...).
		From(tilesTable).
		OrderBy("level", "grid_y", "grid_x").
		PlaceholderFormat(squirrel.Dollar)
	if level != nil {
		builder = builder.Where(squirrel.Eq{"level": *level})
	}
	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to create db request: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	result := make([]models.Tile, 0, 1024)
	for rows.Next() {
		var (
			tile                            models.Tile
			id                              string
			nodeIDs, poiIDs, seatIDs, gates []string
		)
		err = rows.Scan(
			&id,
			&tile.GridX,
			&tile.GridY,
			&tile.Level,
			&tile.Bounds.MinX,
			&tile.Bounds.MaxX,
			&tile.Bounds.MinY,
			&tile.Bounds.MaxY,
			&tile.Walkable,
			&nodeIDs,
			&poiIDs,
			&seatIDs,
			&gates,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tile value: %w", err)
		}
		tile.ID = models.TileID(id)
		tile.NodeIDs = toNodeIDs(nodeIDs)
		tile.POIIDs = toNodeIDs(poiIDs)
		tile.SeatIDs = toNodeIDs(seatIDs)
		tile.GateIDs = toNodeIDs(gates)
		result = append(result, tile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tiles: %w", err)
	}
	return result, nil
}

// ReplaceTiles swaps the whole grid index in one transaction.
func (r *Repository) ReplaceTiles(ctx context.Context, tiles []models.Tile) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to start tiles transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err = tx.Exec(ctx, `delete from tiles;`); err != nil {
		return fmt.Errorf("failed to clear tiles: %w", err)
	}
	if err = copyTiles(ctx, tx, tiles); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit tiles transaction: %w", err)
	}
	return nil
}

func copyTiles(ctx context.Context, tx pgx.Tx, tiles []models.Tile) error {
	if len(tiles) == 0 {
		return nil
	}
	copied, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{tilesTable},
		tileColumns,
		pgx.CopyFromSlice(len(tiles), func(i int) ([]any, error) {
			t := tiles[i]
			return []any{
				string(t.ID),
				t.GridX,
				t.GridY,
				t.Level,
				t.Bounds.MinX,
				t.Bounds.MaxX,
				t.Bounds.MinY,
				t.Bounds.MaxY,
				t.Walkable,
				toStrings(t.NodeIDs),
				toStrings(t.POIIDs),
				toStrings(t.SeatIDs),
				toStrings(t.GateIDs),
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to copy tiles: %w", err)
	}
	if int(copied) != len(tiles) {
		return fmt.Errorf("copied %d tiles out of %d", copied, len(tiles))
	}
	return nil
}

func toStrings(ids []models.NodeID) []string {
	res := make([]string, 0, len(ids))
	for _, id := range ids {
		res = append(res, string(id))
	}
	return res
}

func toNodeIDs(ids []string) []models.NodeID {
	res := make([]models.NodeID, 0, len(ids))
	for _, id := range ids {
		res = append(res, models.NodeID(id))
	}
	return res
}
