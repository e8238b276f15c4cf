package mapserver

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Sh00ty/stadium-map/internal/models"
)

// a route starting on another level than the caller costs this much extra
const levelChangePenalty = 100.0

func (srv *Server) listEmergencyRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := srv.repo.ListEmergencyRoutes(r.Context())
	if err != nil {
		srv.writeError(w, r, err, "Emergency routes not found")
		return
	}
	if routes == nil {
		routes = []models.EmergencyRoute{}
	}
	writeJSON(w, http.StatusOK, routes)
}

type routeStart struct {
	ID    models.NodeID `json:"id"`
	X     float64       `json:"x"`
	Y     float64       `json:"y"`
	Level int           `json:"level"`
}

type nearestRouteResponse struct {
	RouteID         models.RouteID `json:"route_id"`
	RouteName       string         `json:"route_name"`
	ExitID          models.NodeID  `json:"exit_id"`
	StartNode       routeStart     `json:"start_node"`
	DistanceToStart float64        `json:"distance_to_start"`
	NumWaypoints    int            `json:"num_waypoints"`
}

// nearestEmergencyRoute picks the route whose start node is closest to
// (x, y, level).
func (srv *Server) nearestEmergencyRoute(w http.ResponseWriter, r *http.Request) {
	x, ok := queryFloat(w, r, "x")
	if !ok {
		return
	}
	y, ok := queryFloat(w, r, "y")
	if !ok {
		return
	}
	level, ok := queryInt(w, r, "level")
	if !ok {
		return
	}
	if level == nil {
		level = new(int)
	}

	routes, err := srv.repo.ListEmergencyRoutes(r.Context())
	if err != nil {
		srv.writeError(w, r, err, "No emergency routes defined")
		return
	}
	if len(routes) == 0 {
		writeDetail(w, http.StatusNotFound, "No emergency routes defined")
		return
	}

	starts := make([]models.NodeID, 0, len(routes))
	for _, route := range routes {
		if id, ok := route.Start(); ok {
			starts = append(starts, id)
		}
	}
	nodes, err := srv.nodesByID(r, starts)
	if err != nil {
		srv.writeError(w, r, err, "No valid emergency routes found")
		return
	}

	var (
		best     *nearestRouteResponse
		bestDist = math.Inf(1)
	)
	for _, route := range routes {
		id, ok := route.Start()
		if !ok {
			continue
		}
		start, ok := nodes[id]
		if !ok {
			continue
		}
		dist := math.Hypot(start.X-x, start.Y-y)
		if start.Level != *level {
			dist += levelChangePenalty
		}
		if dist >= bestDist {
			continue
		}
		bestDist = dist
		best = &nearestRouteResponse{
			RouteID:   route.ID,
			RouteName: route.Name,
			ExitID:    route.ExitID,
			StartNode: routeStart{
				ID:    start.ID,
				X:     start.X,
				Y:     start.Y,
				Level: start.Level,
			},
			DistanceToStart: math.Round(dist*100) / 100,
			NumWaypoints:    len(route.NodeIDs),
		}
	}
	if best == nil {
		writeDetail(w, http.StatusNotFound, "No valid emergency routes found")
		return
	}
	writeJSON(w, http.StatusOK, best)
}

type geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

type feature struct {
	Type       string         `json:"type"`
	ID         string         `json:"id,omitempty"`
	Geometry   geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

type routeMetadata struct {
	RouteID      models.RouteID  `json:"route_id"`
	RouteName    string          `json:"route_name"`
	Description  *string         `json:"description"`
	ExitID       models.NodeID   `json:"exit_id"`
	NodeIDs      []models.NodeID `json:"node_ids"`
	NumWaypoints int             `json:"num_waypoints"`
}

type routeCollection struct {
	Type     string        `json:"type"`
	Features []feature     `json:"features"`
	Metadata routeMetadata `json:"metadata"`
}

// getEmergencyRoute returns the route as a feature collection: the path as
// a line followed by one point per waypoint. Waypoints whose node is gone
// are left out of both.
func (srv *Server) getEmergencyRoute(w http.ResponseWriter, r *http.Request) {
	id := models.RouteID(mux.Vars(r)["id"])
	route, err := srv.repo.GetEmergencyRoute(r.Context(), id)
	if err != nil {
		srv.writeError(w, r, err, fmt.Sprintf("Emergency route '%s' not found", id))
		return
	}
	nodes, err := srv.nodesByID(r, route.NodeIDs)
	if err != nil {
		srv.writeError(w, r, err, fmt.Sprintf("Emergency route '%s' not found", id))
		return
	}

	line := make([][2]float64, 0, len(route.NodeIDs))
	points := make([]feature, 0, len(route.NodeIDs))
	for i, nodeID := range route.NodeIDs {
		node, ok := nodes[nodeID]
		if !ok {
			continue
		}
		line = append(line, [2]float64{node.X, node.Y})

		role := "waypoint"
		switch i {
		case 0:
			role = "start"
		case len(route.NodeIDs) - 1:
			role = "exit"
		}
		points = append(points, feature{
			Type:     "Feature",
			ID:       fmt.Sprintf("%s_waypoint_%d", route.ID, i),
			Geometry: geometry{Type: "Point", Coordinates: [2]float64{node.X, node.Y}},
			Properties: map[string]any{
				"node_id": node.ID,
				"name":    node.Name,
				"type":    node.Type,
				"level":   node.Level,
				"order":   i,
				"role":    role,
			},
		})
	}

	features := make([]feature, 0, len(points)+1)
	features = append(features, feature{
		Type:     "Feature",
		ID:       string(route.ID),
		Geometry: geometry{Type: "LineString", Coordinates: line},
		Properties: map[string]any{
			"id":          route.ID,
			"name":        route.Name,
			"description": route.Description,
			"exit_id":     route.ExitID,
			"type":        "emergency_route",
		},
	})
	features = append(features, points...)

	writeJSON(w, http.StatusOK, routeCollection{
		Type:     "FeatureCollection",
		Features: features,
		Metadata: routeMetadata{
			RouteID:      route.ID,
			RouteName:    route.Name,
			Description:  route.Description,
			ExitID:       route.ExitID,
			NodeIDs:      route.NodeIDs,
			NumWaypoints: len(route.NodeIDs),
		},
	})
}

func (srv *Server) nodesByID(r *http.Request, ids []models.NodeID) (map[models.NodeID]models.Node, error) {
	if len(ids) == 0 {
		return map[models.NodeID]models.Node{}, nil
	}
	nodes, err := srv.repo.ListNodes(r.Context(), models.NodeFilter{IDs: ids})
	if err != nil {
		return nil, err
	}
	res := make(map[models.NodeID]models.Node, len(nodes))
	for _, n := range nodes {
		res[n.ID] = n
	}
	return res, nil
}

// queryFloat reads a required float query parameter.
func queryFloat(w http.ResponseWriter, r *http.Request, name string) (float64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		writeDetail(w, http.StatusUnprocessableEntity, fmt.Sprintf("%s is required", name))
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		writeDetail(w, http.StatusUnprocessableEntity, fmt.Sprintf("%s must be a number, got %q", name, raw))
		return 0, false
	}
	return v, true
}
