package models

type RouteID string

func (r RouteID) String() string {
	return string(r)
}

// EmergencyRoute is a precomputed evacuation path. NodeIDs is ordered from
// the start node to the exit, the last id is always ExitID.
type EmergencyRoute struct {
	ID          RouteID  `json:"id"`
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	ExitID      NodeID   `json:"exit_id"`
	NodeIDs     []NodeID `json:"node_ids"`
}

// Start is the first node of the path.
func (r EmergencyRoute) Start() (NodeID, bool) {
	if len(r.NodeIDs) == 0 {
		return "", false
	}
	return r.NodeIDs[0], true
}

// MapBounds is the extent of all stored nodes.
type MapBounds struct {
	Bounds Bounds
	Levels []int
}
