package grid

import (
	"context"
	"fmt"
	"math"

	"github.com/Sh00ty/stadium-map/internal/models"
)

const (
	DefaultCellSize = 5.0
)

type Config struct {
	CellSize float64 `json:"cell_size"`
	OriginX  float64 `json:"origin_x"`
	OriginY  float64 `json:"origin_y"`
}

func DefaultConfig() Config {
	return Config{CellSize: DefaultCellSize}
}

type Manager struct {
	cfg Config
}

func NewManager(cfg Config) Manager {
	if cfg.CellSize <= 0 {
		cfg.CellSize = DefaultCellSize
	}
	return Manager{cfg: cfg}
}

func (m Manager) Config() Config {
	return m.cfg
}

func (m Manager) CellCoords(x, y float64) (int, int) {
	gx := math.Floor((x - m.cfg.OriginX) / m.cfg.CellSize)
	gy := math.Floor((y - m.cfg.OriginY) / m.cfg.CellSize)
	return int(gx), int(gy)
}

func (m Manager) CellBounds(gridX, gridY int) models.Bounds {
	minX := m.cfg.OriginX + float64(gridX)*m.cfg.CellSize
	minY := m.cfg.OriginY + float64(gridY)*m.cfg.CellSize
	return models.Bounds{
		MinX: minX,
		MaxX: minX + m.cfg.CellSize,
		MinY: minY,
		MaxY: minY + m.cfg.CellSize,
	}
}

func TileID(gridX, gridY, level int) models.TileID {
	return models.TileID(fmt.Sprintf("tile_%d_%d_%d", gridX, gridY, level))
}

// Build buckets nodes into tiles. Tiles come out in the order their first
// node was seen.
func (m Manager) Build(nodes []models.Node) []models.Tile {
	var (
		index = make(map[models.TileID]int, len(nodes)/4+1)
		tiles = make([]models.Tile, 0, len(nodes)/4+1)
	)
	for _, node := range nodes {
		gx, gy := m.CellCoords(node.X, node.Y)
		id := TileID(gx, gy, node.Level)

		pos, ok := index[id]
		if !ok {
			pos = len(tiles)
			index[id] = pos
			tiles = append(tiles, models.Tile{
				ID:       id,
				GridX:    gx,
				GridY:    gy,
				Level:    node.Level,
				Bounds:   m.CellBounds(gx, gy),
				Walkable: true,
			})
		}
		tile := &tiles[pos]

		tile.NodeIDs = appendUnique(tile.NodeIDs, node.ID)
		switch {
		case node.Type == models.NodeTypeGate:
			tile.GateIDs = appendUnique(tile.GateIDs, node.ID)
		case node.Type == models.NodeTypeSeat:
			tile.SeatIDs = appendUnique(tile.SeatIDs, node.ID)
		case node.Type.IsPOI():
			tile.POIIDs = appendUnique(tile.POIIDs, node.ID)
		}
	}
	return tiles
}

func appendUnique(ids []models.NodeID, id models.NodeID) []models.NodeID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

type Stats struct {
	TotalTiles      int                 `json:"total_tiles"`
	EntitiesIndexed models.EntityCounts `json:"entities_indexed"`
	Configuration   Config              `json:"configuration"`
}

func (m Manager) Stats(tiles []models.Tile) Stats {
	st := Stats{
		TotalTiles:    len(tiles),
		Configuration: m.cfg,
	}
	for _, t := range tiles {
		c := t.Counts()
		st.EntitiesIndexed.Nodes += c.Nodes
		st.EntitiesIndexed.POIs += c.POIs
		st.EntitiesIndexed.Seats += c.Seats
		st.EntitiesIndexed.Gates += c.Gates
	}
	e := &st.EntitiesIndexed
	e.Total = e.Nodes + e.POIs + e.Seats + e.Gates
	return st
}

type Store interface {
	ListNodes(ctx context.Context, filter models.NodeFilter) ([]models.Node, error)
	ReplaceTiles(ctx context.Context, tiles []models.Tile) error
}

// Rebuilder recomputes the grid index from the nodes currently stored.
type Rebuilder struct {
	manager Manager
	store   Store
}

func NewRebuilder(manager Manager, store Store) *Rebuilder {
	return &Rebuilder{
		manager: manager,
		store:   store,
	}
}

func (r *Rebuilder) Rebuild(ctx context.Context) (int, error) {
	nodes, err := r.store.ListNodes(ctx, models.NodeFilter{})
	if err != nil {
		return 0, fmt.Errorf("failed to read nodes for grid: %w", err)
	}
	tiles := r.manager.Build(nodes)
	err = r.store.ReplaceTiles(ctx, tiles)
	if err != nil {
		return 0, fmt.Errorf("failed to store grid: %w", err)
	}
	return len(tiles), nil
}
