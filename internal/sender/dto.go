package sender

import "github.com/Sh00ty/stadium-map/internal/models"

type ClosureDto struct {
	ID     string  `json:"id"`
	Reason string  `json:"reason"`
	EdgeID *string `json:"edge_id"`
	NodeID *string `json:"node_id"`
}

// Value mirrors the change-event envelope: "c" carries only After,
// "d" carries only Before.
type Value[T any] struct {
	Before *T     `json:"before"`
	After  *T     `json:"after"`
	Op     string `json:"op"`
	TsMs   int64  `json:"ts_ms"`
}

func closureToDto(c models.Closure) *ClosureDto {
	dto := &ClosureDto{
		ID:     c.ID.String(),
		Reason: c.Reason,
	}
	if c.EdgeID != nil {
		id := string(*c.EdgeID)
		dto.EdgeID = &id
	}
	if c.NodeID != nil {
		id := string(*c.NodeID)
		dto.NodeID = &id
	}
	return dto
}

func eventToValue(event models.ClosureEvent) Value[ClosureDto] {
	value := Value[ClosureDto]{
		TsMs: event.At.UnixMilli(),
	}
	switch event.Op {
	case models.ClosureCreated:
		value.Op = "c"
		value.After = closureToDto(event.Closure)
	case models.ClosureDeleted:
		value.Op = "d"
		value.Before = closureToDto(event.Closure)
	default:
		value.Op = "u"
		value.After = closureToDto(event.Closure)
	}
	return value
}
