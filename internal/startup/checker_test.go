package startup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errConnRefused = errors.New("dial tcp 127.0.0.1:5432: connect: connection refused")

// scriptedStore fails the first failures probes and then reports count.
type scriptedStore struct {
	failures  int
	count     int64
	countErr  error
	calls     int
	onEnsure  func(call int)
	schemaRan int
}

func (s *scriptedStore) EnsureSchema(_ context.Context) error {
	s.calls++
	if s.onEnsure != nil {
		s.onEnsure(s.calls)
	}
	if s.calls <= s.failures {
		return errConnRefused
	}
	s.schemaRan++
	return nil
}

func (s *scriptedStore) CountNodes(_ context.Context) (int64, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.count, nil
}

func TestSeedChecker_Probe(t *testing.T) {
	t.Parallel()

	t.Run("empty table", func(t *testing.T) {
		checker := NewSeedChecker(&scriptedStore{})
		probe := checker.Probe(context.Background(), 1)
		require.True(t, probe.Succeeded())
		require.Equal(t, uint(1), probe.Attempt)
		require.Zero(t, probe.Count)
	})

	t.Run("populated table", func(t *testing.T) {
		checker := NewSeedChecker(&scriptedStore{count: 42})
		probe := checker.Probe(context.Background(), 3)
		require.True(t, probe.Succeeded())
		require.Equal(t, uint(3), probe.Attempt)
		require.Equal(t, int64(42), probe.Count)
	})

	t.Run("connection error", func(t *testing.T) {
		checker := NewSeedChecker(&scriptedStore{failures: 1})
		probe := checker.Probe(context.Background(), 1)
		require.False(t, probe.Succeeded())
		require.ErrorIs(t, probe.Err, errConnRefused)
	})

	t.Run("count error", func(t *testing.T) {
		countErr := errors.New("relation \"nodes\" does not exist")
		checker := NewSeedChecker(&scriptedStore{countErr: countErr})
		probe := checker.Probe(context.Background(), 1)
		require.ErrorIs(t, probe.Err, countErr)
	})

	t.Run("negative count is a failure", func(t *testing.T) {
		checker := NewSeedChecker(&scriptedStore{count: -1})
		probe := checker.Probe(context.Background(), 1)
		require.False(t, probe.Succeeded())
		require.Zero(t, probe.Count)
	})
}

func TestSeedChecker_ProbeElapsed(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ticks := []time.Time{base, base.Add(250 * time.Millisecond)}

	checker := NewSeedChecker(&scriptedStore{})
	checker.now = func() time.Time {
		now := ticks[0]
		ticks = ticks[1:]
		return now
	}

	probe := checker.Probe(context.Background(), 1)
	require.Equal(t, 250*time.Millisecond, probe.Elapsed)
}

func TestSignalFromCount(t *testing.T) {
	t.Parallel()

	require.Equal(t, SignalEmpty, signalFromCount(0))
	require.Equal(t, SignalPopulated, signalFromCount(1))
	require.Equal(t, SignalPopulated, signalFromCount(6669))
	require.Equal(t, "EMPTY", SignalEmpty.String())
	require.Equal(t, "POPULATED", SignalPopulated.String())
	require.Equal(t, "UNREACHABLE", SignalUnreachable.String())
	require.Equal(t, "UNKNOWN", SignalUnknown.String())
}
