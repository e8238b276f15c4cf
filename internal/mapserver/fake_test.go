package mapserver

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/Sh00ty/stadium-map/internal/models"
	"github.com/Sh00ty/stadium-map/internal/seeder"
)

var errDatabaseDown = errors.New("conn closed")

type fakeRepo struct {
	mu       sync.Mutex
	nodes    map[models.NodeID]models.Node
	edges    map[models.EdgeID]models.Edge
	closures map[models.ClosureID]models.Closure
	routes   map[models.RouteID]models.EmergencyRoute
	tiles    []models.Tile
	failAll  bool

	// runs before GetMap takes the lock
	onGetMap func(ctx context.Context)
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		nodes:    make(map[models.NodeID]models.Node),
		edges:    make(map[models.EdgeID]models.Edge),
		closures: make(map[models.ClosureID]models.Closure),
		routes:   make(map[models.RouteID]models.EmergencyRoute),
	}
}

func (f *fakeRepo) addNode(n models.Node) {
	f.nodes[n.ID] = n
}

func (f *fakeRepo) addEdge(e models.Edge) {
	f.edges[e.ID] = e
}

func (f *fakeRepo) GetMap(ctx context.Context) (models.MapSnapshot, error) {
	if f.onGetMap != nil {
		f.onGetMap(ctx)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return models.MapSnapshot{}, errDatabaseDown
	}
	return models.MapSnapshot{
		Nodes:    sortedValues(f.nodes),
		Edges:    sortedValues(f.edges),
		Closures: sortedValues(f.closures),
	}, nil
}

func (f *fakeRepo) ListNodes(_ context.Context, filter models.NodeFilter) ([]models.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errDatabaseDown
	}
	var res []models.Node
	for _, n := range sortedValues(f.nodes) {
		if len(filter.IDs) > 0 && !slices.Contains(filter.IDs, n.ID) {
			continue
		}
		if len(filter.Types) > 0 && !slices.Contains(filter.Types, n.Type) {
			continue
		}
		if filter.Level != nil && n.Level != *filter.Level {
			continue
		}
		if filter.Block != nil && (n.Block == nil || *n.Block != *filter.Block) {
			continue
		}
		res = append(res, n)
	}
	return res, nil
}

func (f *fakeRepo) GetNode(_ context.Context, id models.NodeID) (models.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.nodes[id]
	if !ok {
		return models.Node{}, fmt.Errorf("node %s: %w", id, models.ErrNotFound)
	}
	return n, nil
}

func (f *fakeRepo) UpdateNode(_ context.Context, id models.NodeID, upd models.NodeUpdate) (models.Node, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.nodes[id]
	if !ok {
		return models.Node{}, fmt.Errorf("node %s: %w", id, models.ErrNotFound)
	}
	upd.Apply(&n)
	f.nodes[id] = n
	return n, nil
}

func (f *fakeRepo) ListEdges(_ context.Context) ([]models.Edge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return sortedValues(f.edges), nil
}

func (f *fakeRepo) GetEdge(_ context.Context, id models.EdgeID) (models.Edge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.edges[id]
	if !ok {
		return models.Edge{}, fmt.Errorf("edge %s: %w", id, models.ErrNotFound)
	}
	return e, nil
}

func (f *fakeRepo) UpdateEdge(_ context.Context, id models.EdgeID, upd models.EdgeUpdate) (models.Edge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.edges[id]
	if !ok {
		return models.Edge{}, fmt.Errorf("edge %s: %w", id, models.ErrNotFound)
	}
	upd.Apply(&e)
	f.edges[id] = e
	return e, nil
}

func (f *fakeRepo) ListClosures(_ context.Context) ([]models.Closure, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return sortedValues(f.closures), nil
}

func (f *fakeRepo) GetClosure(_ context.Context, id models.ClosureID) (models.Closure, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.closures[id]
	if !ok {
		return models.Closure{}, fmt.Errorf("closure %s: %w", id, models.ErrNotFound)
	}
	return c, nil
}

func (f *fakeRepo) CreateClosure(_ context.Context, c models.Closure) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.closures[c.ID]; ok {
		return fmt.Errorf("closure %s: %w", c.ID, models.ErrAlreadyExists)
	}
	if c.EdgeID != nil {
		if _, ok := f.edges[*c.EdgeID]; !ok {
			return fmt.Errorf("%w: edge_id '%s' does not exist", models.ErrInvalidReference, *c.EdgeID)
		}
	}
	if c.NodeID != nil {
		if _, ok := f.nodes[*c.NodeID]; !ok {
			return fmt.Errorf("%w: node_id '%s' does not exist", models.ErrInvalidReference, *c.NodeID)
		}
	}
	f.closures[c.ID] = c
	return nil
}

func (f *fakeRepo) DeleteClosure(_ context.Context, id models.ClosureID) (models.Closure, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.closures[id]
	if !ok {
		return models.Closure{}, fmt.Errorf("closure %s: %w", id, models.ErrNotFound)
	}
	delete(f.closures, id)
	return c, nil
}

func (f *fakeRepo) ListTiles(_ context.Context, level *int) ([]models.Tile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res []models.Tile
	for _, t := range f.tiles {
		if level != nil && t.Level != *level {
			continue
		}
		res = append(res, t)
	}
	return res, nil
}

func (f *fakeRepo) ListEmergencyRoutes(_ context.Context) ([]models.EmergencyRoute, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, errDatabaseDown
	}
	return sortedValues(f.routes), nil
}

func (f *fakeRepo) GetEmergencyRoute(_ context.Context, id models.RouteID) (models.EmergencyRoute, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	route, ok := f.routes[id]
	if !ok {
		return models.EmergencyRoute{}, fmt.Errorf("emergency route %s: %w", id, models.ErrNotFound)
	}
	return route, nil
}

func (f *fakeRepo) GetMapBounds(_ context.Context) (models.MapBounds, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.nodes) == 0 {
		return models.MapBounds{}, fmt.Errorf("map bounds: %w", models.ErrNotFound)
	}
	var (
		res    models.MapBounds
		levels = make(map[int]struct{})
		first  = true
	)
	for _, n := range f.nodes {
		levels[n.Level] = struct{}{}
		if first {
			res.Bounds = models.Bounds{MinX: n.X, MaxX: n.X, MinY: n.Y, MaxY: n.Y}
			first = false
			continue
		}
		res.Bounds.MinX = min(res.Bounds.MinX, n.X)
		res.Bounds.MaxX = max(res.Bounds.MaxX, n.X)
		res.Bounds.MinY = min(res.Bounds.MinY, n.Y)
		res.Bounds.MaxY = max(res.Bounds.MaxY, n.Y)
	}
	for level := range levels {
		res.Levels = append(res.Levels, level)
	}
	slices.Sort(res.Levels)
	return res, nil
}

func sortedValues[K ~string, V any](m map[K]V) []V {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	res := make([]V, 0, len(keys))
	for _, k := range keys {
		res = append(res, m[K(k)])
	}
	return res
}

type fakeRebuilder struct {
	calls int
	tiles int
	err   error
}

func (f *fakeRebuilder) Rebuild(_ context.Context) (int, error) {
	f.calls++
	return f.tiles, f.err
}

type fakeReseeder struct {
	calls   int
	summary seeder.Summary
	err     error
}

func (f *fakeReseeder) Reload(_ context.Context) (seeder.Summary, error) {
	f.calls++
	return f.summary, f.err
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []models.ClosureEvent
}

func (n *recordingNotifier) NotifyClosureChanged(event models.ClosureEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}
