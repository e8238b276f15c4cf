package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Sh00ty/stadium-map/internal/models"
	"github.com/Sh00ty/stadium-map/internal/pgerror"
)

func scanClosure(row pgx.Row) (models.Closure, error) {
	var (
		closure        models.Closure
		id             string
		edgeID, nodeID *string
	)
	err := row.Scan(&id, &closure.Reason, &edgeID, &nodeID)
	if err != nil {
		return models.Closure{}, err
	}
	closure.ID = models.ClosureID(id)
	if edgeID != nil {
		eid := models.EdgeID(*edgeID)
		closure.EdgeID = &eid
	}
	if nodeID != nil {
		nid := models.NodeID(*nodeID)
		closure.NodeID = &nid
	}
	return closure, nil
}

func (r *Repository) ListClosures(ctx context.Context) ([]models.Closure, error) {
	return listClosures(ctx, r.db)
}

func listClosures(ctx context.Context, q querier) ([]models.Closure, error) {
	sql := `
	select id, reason, edge_id, node_id
	from closures
	order by id;
	`
	rows, err := q.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	result := make([]models.Closure, 0, 16)
	for rows.Next() {
		closure, err := scanClosure(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan closure value: %w", err)
		}
		result = append(result, closure)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read closures: %w", err)
	}
	return result, nil
}

func (r *Repository) GetClosure(ctx context.Context, id models.ClosureID) (models.Closure, error) {
	sql := `
	select id, reason, edge_id, node_id
	from closures
	where id = $1;
	`
	closure, err := scanClosure(r.db.QueryRow(ctx, sql, string(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Closure{}, fmt.Errorf("closure %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.Closure{}, fmt.Errorf("failed to get closure %s: %w", id, err)
	}
	return closure, nil
}

func (r *Repository) CreateClosure(ctx context.Context, closure models.Closure) error {
	sql := `
	insert into closures (id, reason, edge_id, node_id)
	values ($1, $2, $3, $4);
	`
	var edgeID, nodeID *string
	if closure.EdgeID != nil {
		s := string(*closure.EdgeID)
		edgeID = &s
	}
	if closure.NodeID != nil {
		s := string(*closure.NodeID)
		nodeID = &s
	}

	_, err := r.db.Exec(ctx, sql, string(closure.ID), closure.Reason, edgeID, nodeID)
	if err == nil {
		return nil
	}
	constraint, ok := pgerror.GetConstraintName(err)
	if !ok {
		return fmt.Errorf("failed to create closure: %w", err)
	}
	switch constraint {
	case "closures_pkey":
		return fmt.Errorf("closure %s: %w", closure.ID, models.ErrAlreadyExists)
	case "closures_edge_id_fkey":
		return fmt.Errorf("%w: edge_id '%s' does not exist", models.ErrInvalidReference, *edgeID)
	case "closures_node_id_fkey":
		return fmt.Errorf("%w: node_id '%s' does not exist", models.ErrInvalidReference, *nodeID)
	case "closures_target_check":
		return fmt.Errorf("%w: either edge_id or node_id must be provided", models.ErrInvalidArgument)
	}
	return fmt.Errorf("failed to create closure: %w", err)
}

// DeleteClosure removes the closure and returns what was stored.
func (r *Repository) DeleteClosure(ctx context.Context, id models.ClosureID) (models.Closure, error) {
	sql := `
	delete from closures
	where id = $1
	returning id, reason, edge_id, node_id;
	`
	closure, err := scanClosure(r.db.QueryRow(ctx, sql, string(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Closure{}, fmt.Errorf("closure %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.Closure{}, fmt.Errorf("failed to delete closure %s: %w", id, err)
	}
	return closure, nil
}
