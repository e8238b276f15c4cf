package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/vrischmann/envconfig"

	"github.com/Sh00ty/stadium-map/internal/grid"
	"github.com/Sh00ty/stadium-map/internal/mapserver"
	"github.com/Sh00ty/stadium-map/internal/metrics"
	"github.com/Sh00ty/stadium-map/internal/notifyer"
	"github.com/Sh00ty/stadium-map/internal/repository/postgres"
	"github.com/Sh00ty/stadium-map/internal/seeder"
	"github.com/Sh00ty/stadium-map/internal/sender"
	"github.com/Sh00ty/stadium-map/internal/startup"
)

func loggerLevelFromString(level string) zerolog.Level {
	level = strings.ToLower(level)
	switch level {
	case "error":
		return zerolog.ErrorLevel
	case "warn":
		return zerolog.WarnLevel
	case "info":
		return zerolog.InfoLevel
	case "debug":
		return zerolog.DebugLevel
	}
	return zerolog.WarnLevel
}

type Config struct {
	InstanceID  string `envconfig:"INSTANCE_ID,default=mapservice"`
	LoggerLevel string `envconfig:"LOGGER_LEVEL,default=warn"`

	DatabaseHost     string `envconfig:"DATABASE_HOST,default=localhost"`
	DatabasePort     uint16 `envconfig:"DATABASE_PORT,default=5432"`
	DatabaseUser     string `envconfig:"DATABASE_USER,default=postgres"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD,default=postgres"`
	DatabaseName     string `envconfig:"DATABASE_NAME,default=postgres"`
	DatabaseMaxConns int32  `envconfig:"DATABASE_MAX_CONNS,default=15"`

	ServerAddr  string   `envconfig:"SERVER_ADDR,default=0.0.0.0"`
	ServerPort  uint16   `envconfig:"SERVER_PORT,default=8000"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS,default=*"`

	StartupMaxAttempts uint          `envconfig:"STARTUP_MAX_ATTEMPTS,default=30"`
	StartupRetryDelay  time.Duration `envconfig:"STARTUP_RETRY_DELAY,default=1s"`

	MetricsAddr string `envconfig:"METRICS_ADDR,optional"`

	QueueAddr            string        `envconfig:"QUEUE_ADDR,optional"`
	QueueTopic           string        `envconfig:"QUEUE_CLOSURE_EVENTS_TOPIC,default=stadium.closures"`
	ResendEventsInterval time.Duration `envconfig:"RESEND_EVENTS_INTERVAL,default=10s"`
}

func (c Config) listenAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerAddr, c.ServerPort)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	appCfg := Config{}
	err := envconfig.Init(&appCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read app config")
	}
	log.Logger = log.Level(loggerLevelFromString(appCfg.LoggerLevel))

	var appMetrics metrics.Metrics = metrics.Nop{}
	if appCfg.MetricsAddr != "" {
		statsdMetrics := metrics.NewStatsd(appCfg.InstanceID, appCfg.MetricsAddr)
		defer statsdMetrics.Close()
		appMetrics = statsdMetrics
	}

	repo, err := postgres.NewRepo(ctx, postgres.Config{
		User:     appCfg.DatabaseUser,
		Password: appCfg.DatabasePassword,
		Host:     appCfg.DatabaseHost,
		Port:     appCfg.DatabasePort,
		Database: appCfg.DatabaseName,
		MaxConns: appCfg.DatabaseMaxConns,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init postgres repository")
	}
	defer repo.Close()

	var closureNotifier mapserver.Notifier = notifyer.Discard{}
	if appCfg.QueueAddr != "" {
		chanNotifier := notifyer.NewNotifier(1024)
		defer chanNotifier.Close()

		publisher := sender.NewKafkaPublisher(appCfg.QueueAddr, appCfg.QueueTopic)
		defer publisher.Close()

		eventSender := sender.NewSenderController(
			chanNotifier.GetEventChan(),
			publisher,
			appCfg.ResendEventsInterval,
			appMetrics,
		)
		go eventSender.Run(ctx)
		closureNotifier = chanNotifier
		log.Warn().Msgf("publishing closure events to %s topic %s", appCfg.QueueAddr, appCfg.QueueTopic)
	}

	gridManager := grid.NewManager(grid.DefaultConfig())
	loader := seeder.NewLoader(repo, gridManager, appMetrics)

	serverCfg := mapserver.DefaultConfig()
	serverCfg.Addr = appCfg.listenAddr()
	serverCfg.CORSOrigins = appCfg.CORSOrigins
	server := mapserver.NewServer(
		serverCfg,
		repo,
		grid.NewRebuilder(gridManager, repo),
		loader,
		closureNotifier,
		gridManager,
		appMetrics,
	)

	orchestrator, err := startup.New(
		startup.Config{
			MaxAttempts: appCfg.StartupMaxAttempts,
			Delay:       appCfg.StartupRetryDelay,
		},
		startup.NewSeedChecker(repo),
		loader,
		server,
		appMetrics,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid startup config")
	}

	report, err := orchestrator.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).
			Str("signal", report.Signal.String()).
			Str("state", report.State().String()).
			Int("attempts", len(report.Probes)).
			Msg("map service failed")
	}
	log.Warn().Msg("map service stopped")
}
