package notifyer

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/Sh00ty/stadium-map/internal/models"
)

// ChanNotifyer hands closure events over to the sender goroutine.
type ChanNotifyer struct {
	eventChan chan models.ClosureEvent
	guard     sync.RWMutex
	closed    bool
}

func NewNotifier(buf int) *ChanNotifyer {
	return &ChanNotifyer{
		eventChan: make(chan models.ClosureEvent, buf),
	}
}

// NotifyClosureChanged never blocks the caller: http handlers call it after
// the write is committed, so a full buffer drops the event.
func (n *ChanNotifyer) NotifyClosureChanged(event models.ClosureEvent) {
	n.guard.RLock()
	defer n.guard.RUnlock()

	if n.closed {
		return
	}
	select {
	case n.eventChan <- event:
	default:
		// sender is behind or the broker is down for long
		log.Warn().Msgf("closure event queue is full, drop %s event for %s", event.Op, event.Closure.ID)
	}
}

func (n *ChanNotifyer) GetEventChan() chan models.ClosureEvent {
	return n.eventChan
}

func (n *ChanNotifyer) Close() {
	n.guard.Lock()
	defer n.guard.Unlock()

	if n.closed {
		return
	}
	n.closed = true
	close(n.eventChan)
}

// Discard is used when no queue is configured.
type Discard struct{}

func (Discard) NotifyClosureChanged(models.ClosureEvent) {}
