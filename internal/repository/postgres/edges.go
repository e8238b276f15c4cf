package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Sh00ty/stadium-map/internal/models"
)

func scanEdge(row pgx.Row) (models.Edge, error) {
	var (
		edge         models.Edge
		id, from, to string
	)
	err := row.Scan(&id, &from, &to, &edge.Weight, &edge.Accessible)
	if err != nil {
		return models.Edge{}, err
	}
	edge.ID = models.EdgeID(id)
	edge.FromID = models.NodeID(from)
	edge.ToID = models.NodeID(to)
	return edge, nil
}

func (r *Repository) ListEdges(ctx context.Context) ([]models.Edge, error) {
	return listEdges(ctx, r.db)
}

func listEdges(ctx context.Context, q querier) ([]models.Edge, error) {
	sql := `
	select id, from_id, to_id, weight, accessible
	from edges
	order by id;
	`
	rows, err := q.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	result := make([]models.Edge, 0, 512)
	for rows.Next() {
		edge, err := scanEdge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan edge value: %w", err)
		}
		result = append(result, edge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read edges: %w", err)
	}
	return result, nil
}

func (r *Repository) GetEdge(ctx context.Context, id models.EdgeID) (models.Edge, error) {
	sql := `
	select id, from_id, to_id, weight, accessible
	from edges
	where id = $1;
	`
	edge, err := scanEdge(r.db.QueryRow(ctx, sql, string(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Edge{}, fmt.Errorf("edge %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.Edge{}, fmt.Errorf("failed to get edge %s: %w", id, err)
	}
	return edge, nil
}

func (r *Repository) UpdateEdge(ctx context.Context, id models.EdgeID, upd models.EdgeUpdate) (models.Edge, error) {
	if upd.IsEmpty() {
		return r.GetEdge(ctx, id)
	}

	builder := squirrel.Update(edgesTable).
		Where(squirrel.Eq{"id": string(id)}).
		Suffix("returning id, from_id, to_id, weight, accessible").
		PlaceholderFormat(squirrel.Dollar)
	if upd.Weight != nil {
		builder = builder.Set("weight", *upd.Weight)
	}
	if upd.Accessible != nil {
		builder = builder.Set("accessible", *upd.Accessible)
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return models.Edge{}, fmt.Errorf("failed to create db request: %w", err)
	}

	edge, err := scanEdge(r.db.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Edge{}, fmt.Errorf("edge %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.Edge{}, fmt.Errorf("failed to update edge %s: %w", id, err)
	}
	return edge, nil
}
