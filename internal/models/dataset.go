package models

// MapSnapshot is the whole navigation graph.
type MapSnapshot struct {
	Nodes    []Node    `json:"nodes"`
	Edges    []Edge    `json:"edges"`
	Closures []Closure `json:"closures"`
}

// Dataset is a seed graph ready to be written in one go.
type Dataset struct {
	Nodes  []Node
	Edges  []Edge
	Routes []EmergencyRoute
}

func (d Dataset) CountByType() map[NodeType]int {
	res := make(map[NodeType]int, 16)
	for _, n := range d.Nodes {
		res[n.Type]++
	}
	return res
}
