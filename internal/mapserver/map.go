package mapserver

import (
	"net/http"

	"github.com/Sh00ty/stadium-map/internal/models"
)

// map view keeps the short field names the clients render from

type mapNode struct {
	ID          models.NodeID   `json:"id"`
	Name        *string         `json:"name"`
	Type        models.NodeType `json:"type"`
	Description *string         `json:"description"`
	X           float64         `json:"x"`
	Y           float64         `json:"y"`
	Level       int             `json:"level"`
}

type mapEdge struct {
	ID     models.EdgeID `json:"id"`
	From   models.NodeID `json:"from"`
	To     models.NodeID `json:"to"`
	Weight float64       `json:"w"`
}

type mapResponse struct {
	Nodes    []mapNode        `json:"nodes"`
	Edges    []mapEdge        `json:"edges"`
	Closures []models.Closure `json:"closures"`
}

func toMapResponse(snap models.MapSnapshot) mapResponse {
	resp := mapResponse{
		Nodes:    make([]mapNode, 0, len(snap.Nodes)),
		Edges:    make([]mapEdge, 0, len(snap.Edges)),
		Closures: snap.Closures,
	}
	if resp.Closures == nil {
		resp.Closures = []models.Closure{}
	}
	for _, n := range snap.Nodes {
		resp.Nodes = append(resp.Nodes, mapNode{
			ID:          n.ID,
			Name:        n.Name,
			Type:        n.Type,
			Description: n.Description,
			X:           n.X,
			Y:           n.Y,
			Level:       n.Level,
		})
	}
	for _, e := range snap.Edges {
		resp.Edges = append(resp.Edges, mapEdge{
			ID:     e.ID,
			From:   e.FromID,
			To:     e.ToID,
			Weight: e.Weight,
		})
	}
	return resp
}

func (srv *Server) getMap(w http.ResponseWriter, r *http.Request) {
	snap, err := srv.repo.GetMap(r.Context())
	if err != nil {
		srv.writeError(w, r, err, "Map not found")
		return
	}
	writeJSON(w, http.StatusOK, toMapResponse(snap))
}

type vizNode struct {
	ID          models.NodeID `json:"id"`
	X           float64       `json:"x"`
	Y           float64       `json:"y"`
	Level       int           `json:"level"`
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
}

type vizGate struct {
	vizNode
	NumServers  *int     `json:"num_servers"`
	ServiceRate *float64 `json:"service_rate"`
}

type vizSeat struct {
	vizNode
	Block  *string `json:"block"`
	Row    *int    `json:"row"`
	Number *int    `json:"number"`
}

type vizPOI struct {
	vizNode
	Type        models.NodeType `json:"type"`
	NumServers  *int            `json:"num_servers"`
	ServiceRate *float64        `json:"service_rate"`
}

type vizGroups struct {
	Navigation []vizNode `json:"navigation"`
	Gates      []vizGate `json:"gates"`
	POIs       []vizPOI  `json:"pois"`
	Seats      []vizSeat `json:"seats"`
	Stairs     []vizNode `json:"stairs"`
}

type vizStats struct {
	Navigation int `json:"navigation"`
	Gates      int `json:"gates"`
	POIs       int `json:"pois"`
	Seats      int `json:"seats"`
	Stairs     int `json:"stairs"`
	Total      int `json:"total"`
}

type visualizationResponse struct {
	// level number or "all"
	Level any       `json:"level"`
	Nodes vizGroups `json:"nodes"`
	Edges []mapEdge `json:"edges"`
	Stats vizStats  `json:"stats"`
}

func groupNodes(nodes []models.Node) vizGroups {
	groups := vizGroups{
		Navigation: []vizNode{},
		Gates:      []vizGate{},
		POIs:       []vizPOI{},
		Seats:      []vizSeat{},
		Stairs:     []vizNode{},
	}
	for _, n := range nodes {
		base := vizNode{
			ID:          n.ID,
			X:           n.X,
			Y:           n.Y,
			Level:       n.Level,
			Name:        n.Name,
			Description: n.Description,
		}
		switch n.Type {
		case models.NodeTypeCorridor, models.NodeTypeNormal, models.NodeTypeRowAisle:
			groups.Navigation = append(groups.Navigation, base)
		case models.NodeTypeStairs, models.NodeTypeRamp:
			groups.Stairs = append(groups.Stairs, base)
		case models.NodeTypeGate:
			groups.Gates = append(groups.Gates, vizGate{vizNode: base, NumServers: n.NumServers, ServiceRate: n.ServiceRate})
		case models.NodeTypeSeat:
			groups.Seats = append(groups.Seats, vizSeat{vizNode: base, Block: n.Block, Row: n.Row, Number: n.Number})
		default:
			groups.POIs = append(groups.POIs, vizPOI{vizNode: base, Type: n.Type, NumServers: n.NumServers, ServiceRate: n.ServiceRate})
		}
	}
	return groups
}

// mapVisualization groups nodes by how a client draws them. With a level
// only nodes of that level and edges leaving them are returned.
func (srv *Server) mapVisualization(w http.ResponseWriter, r *http.Request) {
	level, ok := queryInt(w, r, "level")
	if !ok {
		return
	}
	nodes, err := srv.repo.ListNodes(r.Context(), models.NodeFilter{Level: level})
	if err != nil {
		srv.writeError(w, r, err, "Map not found")
		return
	}
	edges, err := srv.repo.ListEdges(r.Context())
	if err != nil {
		srv.writeError(w, r, err, "Map not found")
		return
	}

	onLevel := make(map[models.NodeID]struct{}, len(nodes))
	for _, n := range nodes {
		onLevel[n.ID] = struct{}{}
	}
	resp := visualizationResponse{
		Level: "all",
		Nodes: groupNodes(nodes),
		Edges: make([]mapEdge, 0, len(edges)),
	}
	if level != nil {
		resp.Level = *level
	}
	for _, e := range edges {
		if level != nil {
			if _, ok := onLevel[e.FromID]; !ok {
				continue
			}
		}
		resp.Edges = append(resp.Edges, mapEdge{ID: e.ID, From: e.FromID, To: e.ToID, Weight: e.Weight})
	}
	resp.Stats = vizStats{
		Navigation: len(resp.Nodes.Navigation),
		Gates:      len(resp.Nodes.Gates),
		POIs:       len(resp.Nodes.POIs),
		Seats:      len(resp.Nodes.Seats),
		Stairs:     len(resp.Nodes.Stairs),
		Total:      len(nodes),
	}
	writeJSON(w, http.StatusOK, resp)
}

type point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type boundsResponse struct {
	Bounds models.Bounds `json:"bounds"`
	Center point         `json:"center"`
	Levels []int         `json:"levels"`
}

func (srv *Server) mapBounds(w http.ResponseWriter, r *http.Request) {
	b, err := srv.repo.GetMapBounds(r.Context())
	if err != nil {
		srv.writeError(w, r, err, "Map is empty")
		return
	}
	writeJSON(w, http.StatusOK, boundsResponse{
		Bounds: b.Bounds,
		Center: point{
			X: (b.Bounds.MinX + b.Bounds.MaxX) / 2,
			Y: (b.Bounds.MinY + b.Bounds.MaxY) / 2,
		},
		Levels: b.Levels,
	})
}
