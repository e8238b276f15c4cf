package models

type TileID string

type Bounds struct {
	MinX float64 `json:"min_x"`
	MaxX float64 `json:"max_x"`
	MinY float64 `json:"min_y"`
	MaxY float64 `json:"max_y"`
}

// Tile is one grid cell of a level. NodeIDs holds every node of the cell,
// the other lists are the same ids split by category.
type Tile struct {
	ID       TileID
	GridX    int
	GridY    int
	Level    int
	Bounds   Bounds
	Walkable bool
	NodeIDs  []NodeID
	POIIDs   []NodeID
	SeatIDs  []NodeID
	GateIDs  []NodeID
}

type EntityCounts struct {
	Nodes int `json:"nodes"`
	POIs  int `json:"pois"`
	Seats int `json:"seats"`
	Gates int `json:"gates"`
	Total int `json:"total"`
}

func (t Tile) Counts() EntityCounts {
	c := EntityCounts{
		Nodes: len(t.NodeIDs),
		POIs:  len(t.POIIDs),
		Seats: len(t.SeatIDs),
		Gates: len(t.GateIDs),
	}
	c.Total = c.Nodes + c.POIs + c.Seats + c.Gates
	return c
}
