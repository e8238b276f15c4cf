package models

import (
	"fmt"
	"time"
)

type ClosureID string

func (c ClosureID) String() string {
	return string(c)
}

// Closure marks a node or an edge as temporarily unusable.
type Closure struct {
	ID     ClosureID `json:"id"`
	Reason string    `json:"reason"`
	EdgeID *EdgeID   `json:"edge_id"`
	NodeID *NodeID   `json:"node_id"`
}

func (c Closure) Validate() error {
	if c.Reason == "" {
		return fmt.Errorf("%w: reason is required", ErrInvalidArgument)
	}
	if c.EdgeID == nil && c.NodeID == nil {
		return fmt.Errorf("%w: either edge_id or node_id must be provided", ErrInvalidArgument)
	}
	return nil
}

type ClosureEventOp int8

const (
	ClosureUnknown ClosureEventOp = iota
	ClosureCreated
	ClosureDeleted
)

func (op ClosureEventOp) String() string {
	switch op {
	case ClosureCreated:
		return "created"
	case ClosureDeleted:
		return "deleted"
	}
	return "unknown"
}

type ClosureEvent struct {
	Op      ClosureEventOp
	Closure Closure
	At      time.Time
}
