package startup

import (
	"fmt"
	"time"
)

// SeedSignal is the verdict of probing the database at startup.
type SeedSignal int8

const (
	SignalUnknown SeedSignal = iota
	SignalEmpty
	SignalPopulated
	SignalUnreachable
)

func (s SeedSignal) String() string {
	switch s {
	case SignalEmpty:
		return "EMPTY"
	case SignalPopulated:
		return "POPULATED"
	case SignalUnreachable:
		return "UNREACHABLE"
	}
	return "UNKNOWN"
}

func signalFromCount(count int64) SeedSignal {
	if count == 0 {
		return SignalEmpty
	}
	return SignalPopulated
}

type State int8

const (
	StateProbing State = iota
	StateLoading
	StateServing
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateProbing:
		return "PROBING"
	case StateLoading:
		return "LOADING"
	case StateServing:
		return "SERVING"
	case StateFailed:
		return "FAILED"
	}
	return fmt.Sprintf("State(%d)", int8(s))
}

// ConnectionProbe is one attempt to reach the database and read the node count.
type ConnectionProbe struct {
	Attempt uint
	Err     error
	Count   int64
	Elapsed time.Duration
}

func (p ConnectionProbe) Succeeded() bool {
	return p.Err == nil
}

type Report struct {
	Signal        SeedSignal
	Probes        []ConnectionProbe
	LoaderInvoked bool
	// set once the api address is bound
	ServerStarted bool
	States        []State
}

func (r *Report) transition(s State) {
	r.States = append(r.States, s)
}

// State is the last state the orchestration reached.
func (r Report) State() State {
	if len(r.States) == 0 {
		return StateProbing
	}
	return r.States[len(r.States)-1]
}
