package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Sh00ty/stadium-map/internal/models"
)

func scanRoute(row pgx.Row) (models.EmergencyRoute, error) {
	var (
		route   models.EmergencyRoute
		id      string
		exitID  string
		nodeIDs []string
	)
	err := row.Scan(&id, &route.Name, &route.Description, &exitID, &nodeIDs)
	if err != nil {
		return models.EmergencyRoute{}, err
	}
	route.ID = models.RouteID(id)
	route.ExitID = models.NodeID(exitID)
	route.NodeIDs = toNodeIDs(nodeIDs)
	return route, nil
}

func (r *Repository) ListEmergencyRoutes(ctx context.Context) ([]models.EmergencyRoute, error) {
	sql := `
	select id, name, description, exit_id, node_ids
	from emergency_routes
	order by id;
	`
	rows, err := r.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	result := make([]models.EmergencyRoute, 0, 8)
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan emergency route value: %w", err)
		}
		result = append(result, route)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read emergency routes: %w", err)
	}
	return result, nil
}

func (r *Repository) GetEmergencyRoute(ctx context.Context, id models.RouteID) (models.EmergencyRoute, error) {
	sql := `
	select id, name, description, exit_id, node_ids
	from emergency_routes
	where id = $1;
	`
	route, err := scanRoute(r.db.QueryRow(ctx, sql, string(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.EmergencyRoute{}, fmt.Errorf("emergency route %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.EmergencyRoute{}, fmt.Errorf("failed to get emergency route %s: %w", id, err)
	}
	return route, nil
}

// GetMapBounds returns models.ErrNotFound when there are no nodes.
func (r *Repository) GetMapBounds(ctx context.Context) (models.MapBounds, error) {
	sql := `
	select min(x), max(x), min(y), max(y),
		coalesce(array_agg(distinct level order by level), '{}')
	from nodes;
	`
	var (
		minX, maxX, minY, maxY *float64
		levels                 []int32
	)
	err := r.db.QueryRow(ctx, sql).Scan(&minX, &maxX, &minY, &maxY, &levels)
	if err != nil {
		return models.MapBounds{}, fmt.Errorf("failed to get map bounds: %w", err)
	}
	if minX == nil || maxX == nil || minY == nil || maxY == nil {
		return models.MapBounds{}, fmt.Errorf("map bounds: %w", models.ErrNotFound)
	}

	res := models.MapBounds{
		Bounds: models.Bounds{MinX: *minX, MaxX: *maxX, MinY: *minY, MaxY: *maxY},
		Levels: make([]int, 0, len(levels)),
	}
	for _, level := range levels {
		res.Levels = append(res.Levels, int(level))
	}
	return res, nil
}
