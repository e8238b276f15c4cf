package notifyer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Sh00ty/stadium-map/internal/models"
)

func closureEvent(id string, op models.ClosureEventOp) models.ClosureEvent {
	return models.ClosureEvent{
		Op:      op,
		Closure: models.Closure{ID: models.ClosureID(id), Reason: "maintenance"},
		At:      time.Unix(1700000000, 0),
	}
}

func TestChanNotifyer_Delivers(t *testing.T) {
	t.Parallel()

	n := NewNotifier(2)
	n.NotifyClosureChanged(closureEvent("c1", models.ClosureCreated))
	n.NotifyClosureChanged(closureEvent("c1", models.ClosureDeleted))

	first := <-n.GetEventChan()
	second := <-n.GetEventChan()
	require.Equal(t, models.ClosureCreated, first.Op)
	require.Equal(t, models.ClosureDeleted, second.Op)
	require.Equal(t, models.ClosureID("c1"), second.Closure.ID)
}

func TestChanNotifyer_DropsWhenFull(t *testing.T) {
	t.Parallel()

	n := NewNotifier(1)
	n.NotifyClosureChanged(closureEvent("c1", models.ClosureCreated))
	n.NotifyClosureChanged(closureEvent("c2", models.ClosureCreated))

	require.Len(t, n.GetEventChan(), 1)
	require.Equal(t, models.ClosureID("c1"), (<-n.GetEventChan()).Closure.ID)
}

func TestChanNotifyer_Close(t *testing.T) {
	t.Parallel()

	n := NewNotifier(1)
	n.Close()
	n.Close()

	require.NotPanics(t, func() {
		n.NotifyClosureChanged(closureEvent("c1", models.ClosureCreated))
	})
	_, ok := <-n.GetEventChan()
	require.False(t, ok)
}
