package models

type EdgeID string

func (e EdgeID) String() string {
	return string(e)
}

type Edge struct {
	ID         EdgeID  `json:"id"`
	FromID     NodeID  `json:"from_id"`
	ToID       NodeID  `json:"to_id"`
	Weight     float64 `json:"weight"`
	Accessible bool    `json:"accessible"`
}

type EdgeUpdate struct {
	Weight     *float64 `json:"weight"`
	Accessible *bool    `json:"accessible"`
}

func (u EdgeUpdate) IsEmpty() bool {
	return u.Weight == nil && u.Accessible == nil
}

func (u EdgeUpdate) Apply(e *Edge) {
	if u.Weight != nil {
		e.Weight = *u.Weight
	}
	if u.Accessible != nil {
		e.Accessible = *u.Accessible
	}
}
