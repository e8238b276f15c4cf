package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Sh00ty/stadium-map/internal/models"
)

var nodeColumns = []string{
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
	`"row"`,
	"number",
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanNode(row pgx.Row) (models.Node, error) {
	var (
		node     models.Node
		id       string
		nodeType string
	)
	err := row.Scan(
		&id,
		&node.Name,
		&node.Description,
		&node.X,
		&node.Y,
		&node.Level,
		&nodeType,
		&node.NumServers,
		&node.ServiceRate,
		&node.Block,
		&node.Row,
		&node.Number,
	)
	if err != nil {
		return models.Node{}, err
	}
	node.ID = models.NodeID(id)
	node.Type = models.NodeType(nodeType)
	return node, nil
}

func (r *Repository) ListNodes(ctx context.Context, filter models.NodeFilter) ([]models.Node, error) {
	return listNodes(ctx, r.db, filter)
}

func listNodes(ctx context.Context, q querier, filter models.NodeFilter) ([]models.Node, error) {
	builder := squirrel.Select(nodeColumns...).
		From(nodesTable).
		OrderBy("id").
		PlaceholderFormat(squirrel.Dollar)

	if len(filter.IDs) != 0 {
		builder = builder.Where(squirrel.Eq{"id": toStrings(filter.IDs)})
	}
	if len(filter.Types) != 0 {
		types := make([]string, 0, len(filter.Types))
		for _, t := range filter.Types {
			types = append(types, string(t))
		}
		builder = builder.Where(squirrel.Eq{"type": types})
	}
	if filter.Level != nil {
		builder = builder.Where(squirrel.Eq{"level": *filter.Level})
	}
	if filter.Block != nil {
		builder = builder.Where(squirrel.Eq{"block": *filter.Block})
	}

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to create db request: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	result := make([]models.Node, 0, 256)
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan node value: %w", err)
		}
		result = append(result, node)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read nodes: %w", err)
	}
	return result, nil
}

func (r *Repository) GetNode(ctx context.Context, id models.NodeID) (models.Node, error) {
	sql := `select ` + strings.Join(nodeColumns, ", ") + ` from nodes where id = $1;`

	node, err := scanNode(r.db.QueryRow(ctx, sql, string(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Node{}, fmt.Errorf("node %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.Node{}, fmt.Errorf("failed to get node %s: %w", id, err)
	}
	return node, nil
}

func (r *Repository) UpdateNode(ctx context.Context, id models.NodeID, upd models.NodeUpdate) (models.Node, error) {
	if upd.IsEmpty() {
		return r.GetNode(ctx, id)
	}

	set := make(map[string]any, 11)
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.X != nil {
		set["x"] = *upd.X
	}
	if upd.Y != nil {
		set["y"] = *upd.Y
	}
	if upd.Level != nil {
		set["level"] = *upd.Level
	}
	if upd.Type != nil {
		set["type"] = string(*upd.Type)
	}
	if upd.NumServers != nil {
		set["num_servers"] = *upd.NumServers
	}
	if upd.ServiceRate != nil {
		set["service_rate"] = *upd.ServiceRate
	}
	if upd.Block != nil {
		set["block"] = *upd.Block
	}
	if upd.Row != nil {
		set[`"row"`] = *upd.Row
	}
	if upd.Number != nil {
		set["number"] = *upd.Number
	}

	sql, args, err := squirrel.Update(nodesTable).
		SetMap(set).
		Where(squirrel.Eq{"id": string(id)}).
		Suffix("returning " + strings.Join(nodeColumns, ", ")).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return models.Node{}, fmt.Errorf("failed to create db request: %w", err)
	}

	node, err := scanNode(r.db.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Node{}, fmt.Errorf("node %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.Node{}, fmt.Errorf("failed to update node %s: %w", id, err)
	}
	return node, nil
}
