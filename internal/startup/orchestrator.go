package startup

import (
	"context"
	"errors"
	"fmt"
	"time"

	retry "github.com/avast/retry-go/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sh00ty/stadium-map/internal/metrics"
)

var (
	ErrUnreachable  = errors.New("database is unreachable")
	ErrSeedFailed   = errors.New("failed to load seed data")
	ErrServerFailed = errors.New("api server failed")
)

const (
	DefaultMaxAttempts = 30
	DefaultDelay       = time.Second
)

type Config struct {
	MaxAttempts uint
	Delay       time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts: DefaultMaxAttempts,
		Delay:       DefaultDelay,
	}
}

func (c Config) Validate() error {
	// retry-go treats zero attempts as "retry forever"
	if c.MaxAttempts == 0 {
		return fmt.Errorf("startup max attempts must be positive")
	}
	if c.Delay < 0 {
		return fmt.Errorf("startup retry delay must not be negative, got %s", c.Delay)
	}
	return nil
}

type Loader interface {
	Load(ctx context.Context) error
}

// Server binds its address in Listen and accepts connections in Serve.
type Server interface {
	Listen() error
	Serve(ctx context.Context) error
}

// Orchestrator decides once per process start whether the seed dataset has
// to be loaded, and starts the api server only against a database that is
// reachable and populated.
type Orchestrator struct {
	cfg     Config
	checker *SeedChecker
	loader  Loader
	server  Server
	metrics metrics.Metrics
	log     zerolog.Logger
}

func New(
	cfg Config,
	checker *SeedChecker,
	loader Loader,
	server Server,
	m metrics.Metrics,
) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if m == nil {
		m = metrics.Nop{}
	}
	return &Orchestrator{
		cfg:     cfg,
		checker: checker,
		loader:  loader,
		server:  server,
		metrics: m,
		log:     log.With().Str("component", "startup").Logger(),
	}, nil
}

// AwaitSignal probes the database until it answers or the attempts run out.
// Every probe error counts as one failed attempt.
func (o *Orchestrator) AwaitSignal(ctx context.Context) (SeedSignal, []ConnectionProbe) {
	var (
		probes = make([]ConnectionProbe, 0, min(o.cfg.MaxAttempts, 64))
		count  int64
	)
	err := retry.Do(
		func() error {
			probe := o.checker.Probe(ctx, uint(len(probes))+1)
			probes = append(probes, probe)
			o.metrics.Duration("startup.probe", probe.Elapsed)
			if !probe.Succeeded() {
				o.metrics.Increment("startup.probe.failed")
				return probe.Err
			}
			count = probe.Count
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(o.cfg.MaxAttempts),
		retry.Delay(o.cfg.Delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			o.log.Warn().Err(err).Msgf("database is not ready, attempt %d/%d", attempt+1, o.cfg.MaxAttempts)
		}),
	)
	if err != nil {
		o.log.Error().Err(err).Msgf("database is still unreachable after %d attempts", len(probes))
		return SignalUnreachable, probes
	}

	signal := signalFromCount(count)
	o.log.Info().Msgf("database answered on attempt %d: %d nodes stored, signal %s", len(probes), count, signal)
	return signal, probes
}

// Run walks PROBING -> {LOADING -> SERVING | SERVING | FAILED}. The loader
// and the server are each invoked at most once. Serve blocks, so on success
// Run returns only when the server stops.
func (o *Orchestrator) Run(ctx context.Context) (Report, error) {
	started := time.Now()
	report := Report{}
	report.transition(StateProbing)

	report.Signal, report.Probes = o.AwaitSignal(ctx)

	switch report.Signal {
	case SignalPopulated:
		o.log.Info().Msg("seed data already present, skip loading")
	case SignalEmpty:
		report.transition(StateLoading)
		report.LoaderInvoked = true
		o.log.Info().Msg("node table is empty, loading seed data")

		err := o.loader.Load(ctx)
		if err != nil {
			report.transition(StateFailed)
			o.metrics.Increment("startup.failed")
			o.log.Error().Err(err).Msg("seed data load failed, api server will not start")
			return report, fmt.Errorf("%w: %w", ErrSeedFailed, err)
		}
		o.log.Info().Msg("seed data loaded")
	default:
		report.transition(StateFailed)
		o.metrics.Increment("startup.failed")
		return report, unreachableError(report.Probes)
	}

	// SERVING is reported only once the address is bound
	err := o.server.Listen()
	if err != nil {
		report.transition(StateFailed)
		o.metrics.Increment("startup.failed")
		o.log.Error().Err(err).Msg("api server failed to bind")
		return report, fmt.Errorf("%w: %w", ErrServerFailed, err)
	}
	report.transition(StateServing)
	report.ServerStarted = true
	o.metrics.Duration("startup.total", time.Since(started))
	o.log.Info().Msgf("startup finished in %s, api server is listening", time.Since(started).Round(time.Millisecond))

	err = o.server.Serve(ctx)
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrServerFailed, err)
	}
	return report, nil
}

func unreachableError(probes []ConnectionProbe) error {
	if len(probes) == 0 {
		return fmt.Errorf("%w: no probe was made", ErrUnreachable)
	}
	last := probes[len(probes)-1]
	if last.Err == nil {
		return fmt.Errorf("%w after %d attempts", ErrUnreachable, len(probes))
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrUnreachable, len(probes), last.Err)
}
