package models

type NodeID string

func (n NodeID) String() string {
	return string(n)
}

type NodeType string

const (
	NodeTypeNormal        NodeType = "normal"
	NodeTypeCorridor      NodeType = "corridor"
	NodeTypeStairs        NodeType = "stairs"
	NodeTypeRamp          NodeType = "ramp"
	NodeTypeGate          NodeType = "gate"
	NodeTypeSeat          NodeType = "seat"
	NodeTypeRowAisle      NodeType = "row_aisle"
	NodeTypePOI           NodeType = "poi"
	NodeTypeEntrance      NodeType = "entrance"
	NodeTypeRestroom      NodeType = "restroom"
	NodeTypeFood          NodeType = "food"
	NodeTypeBar           NodeType = "bar"
	NodeTypeShop          NodeType = "shop"
	NodeTypeMerchandise   NodeType = "merchandise"
	NodeTypeFirstAid      NodeType = "first_aid"
	NodeTypeEmergencyExit NodeType = "emergency_exit"
	NodeTypeInformation   NodeType = "information"
	NodeTypeVIPBox        NodeType = "vip_box"
)

// POITypes are node types served as points of interest.
var POITypes = []NodeType{
	NodeTypePOI,
	NodeTypeEntrance,
	NodeTypeRestroom,
	NodeTypeFood,
	NodeTypeBar,
	NodeTypeShop,
	NodeTypeMerchandise,
	NodeTypeFirstAid,
	NodeTypeEmergencyExit,
	NodeTypeInformation,
	NodeTypeVIPBox,
}

func (t NodeType) IsPOI() bool {
	for _, poi := range POITypes {
		if t == poi {
			return true
		}
	}
	return false
}

type Node struct {
	ID          NodeID   `json:"id"`
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	X           float64  `json:"x"`
	Y           float64  `json:"y"`
	Level       int      `json:"level"`
	Type        NodeType `json:"type"`

	// waiting service parameters of gates and POIs
	NumServers  *int     `json:"num_servers"`
	ServiceRate *float64 `json:"service_rate"`

	// seat position
	Block  *string `json:"block"`
	Row    *int    `json:"row"`
	Number *int    `json:"number"`
}

// NodeUpdate is a partial update, nil fields are left untouched.
type NodeUpdate struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	X           *float64  `json:"x"`
	Y           *float64  `json:"y"`
	Level       *int      `json:"level"`
	Type        *NodeType `json:"type"`
	NumServers  *int      `json:"num_servers"`
	ServiceRate *float64  `json:"service_rate"`
	Block       *string   `json:"block"`
	Row         *int      `json:"row"`
	Number      *int      `json:"number"`
}

func (u NodeUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil &&
		u.X == nil && u.Y == nil && u.Level == nil && u.Type == nil &&
		u.NumServers == nil && u.ServiceRate == nil &&
		u.Block == nil && u.Row == nil && u.Number == nil
}

func (u NodeUpdate) Apply(n *Node) {
	if u.Name != nil {
		n.Name = u.Name
	}
	if u.Description != nil {
		n.Description = u.Description
	}
	if u.X != nil {
		n.X = *u.X
	}
	if u.Y != nil {
		n.Y = *u.Y
	}
	if u.Level != nil {
		n.Level = *u.Level
	}
	if u.Type != nil {
		n.Type = *u.Type
	}
	if u.NumServers != nil {
		n.NumServers = u.NumServers
	}
	if u.ServiceRate != nil {
		n.ServiceRate = u.ServiceRate
	}
	if u.Block != nil {
		n.Block = u.Block
	}
	if u.Row != nil {
		n.Row = u.Row
	}
	if u.Number != nil {
		n.Number = u.Number
	}
}

type NodeFilter struct {
	IDs   []NodeID
	Types []NodeType
	Level *int
	Block *string
}
