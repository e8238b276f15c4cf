package postgres

import (
	"context"
	"fmt"
)

var schema = []string{
	`create table if not exists nodes (
		id text constraint nodes_pkey primary key,
		name text,
		description text,
		x double precision not null,
		y double precision not null,
		level integer not null default 0,
		type text not null default 'normal',
		num_servers integer,
		service_rate double precision,
		block text,
		"row" integer,
		number integer
	);`,
	`create index if not exists nodes_type_idx on nodes (type);`,
	`create index if not exists nodes_level_idx on nodes (level);`,
	`create table if not exists edges (
		id text constraint edges_pkey primary key,
		from_id text not null constraint edges_from_id_fkey references nodes (id) on delete cascade,
		to_id text not null constraint edges_to_id_fkey references nodes (id) on delete cascade,
		weight double precision not null,
		accessible boolean not null default true
	);`,
	`create index if not exists edges_from_id_idx on edges (from_id);`,
	`create index if not exists edges_to_id_idx on edges (to_id);`,
	`create table if not exists closures (
		id text constraint closures_pkey primary key,
		reason text not null,
		edge_id text constraint closures_edge_id_fkey references edges (id) on delete cascade,
		node_id text constraint closures_node_id_fkey references nodes (id) on delete cascade,
		constraint closures_target_check check (edge_id is not null or node_id is not null)
	);`,
	`create table if not exists tiles (
		id text constraint tiles_pkey primary key,
		grid_x integer not null,
		grid_y integer not null,
		level integer not null default 0,
		min_x double precision not null,
		max_x double precision not null,
		min_y double precision not null,
		max_y double precision not null,
		walkable boolean not null default true,
		node_ids text[] not null default '{}',
		poi_ids text[] not null default '{}',
		seat_ids text[] not null default '{}',
		gate_ids text[] not null default '{}'
	);`,
	`create index if not exists tiles_level_idx on tiles (level);`,
	`create table if not exists emergency_routes (
		id text constraint emergency_routes_pkey primary key,
		name text not null,
		description text,
		exit_id text not null constraint emergency_routes_exit_id_fkey references nodes (id) on delete cascade,
		node_ids text[] not null default '{}'
	);`,
}

// EnsureSchema creates missing tables and indexes, existing ones are left as is.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		_, err := r.db.Exec(ctx, stmt)
		if err != nil {
			return fmt.Errorf("failed to init schema: %w", err)
		}
	}
	return nil
}
