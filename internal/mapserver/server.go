package mapserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/Sh00ty/stadium-map/internal/grid"
	"github.com/Sh00ty/stadium-map/internal/metrics"
	"github.com/Sh00ty/stadium-map/internal/models"
	"github.com/Sh00ty/stadium-map/internal/seeder"
)

type Repository interface {
	GetMap(ctx context.Context) (models.MapSnapshot, error)

	ListNodes(ctx context.Context, filter models.NodeFilter) ([]models.Node, error)
	GetNode(ctx context.Context, id models.NodeID) (models.Node, error)
	UpdateNode(ctx context.Context, id models.NodeID, upd models.NodeUpdate) (models.Node, error)

	ListEdges(ctx context.Context) ([]models.Edge, error)
	GetEdge(ctx context.Context, id models.EdgeID) (models.Edge, error)
	UpdateEdge(ctx context.Context, id models.EdgeID, upd models.EdgeUpdate) (models.Edge, error)

	ListClosures(ctx context.Context) ([]models.Closure, error)
	GetClosure(ctx context.Context, id models.ClosureID) (models.Closure, error)
	CreateClosure(ctx context.Context, closure models.Closure) error
	DeleteClosure(ctx context.Context, id models.ClosureID) (models.Closure, error)

	ListTiles(ctx context.Context, level *int) ([]models.Tile, error)

	ListEmergencyRoutes(ctx context.Context) ([]models.EmergencyRoute, error)
	GetEmergencyRoute(ctx context.Context, id models.RouteID) (models.EmergencyRoute, error)
	GetMapBounds(ctx context.Context) (models.MapBounds, error)
}

type GridRebuilder interface {
	Rebuild(ctx context.Context) (int, error)
}

type Reseeder interface {
	Reload(ctx context.Context) (seeder.Summary, error)
}

type Notifier interface {
	NotifyClosureChanged(event models.ClosureEvent)
}

type nopNotifier struct{}

func (nopNotifier) NotifyClosureChanged(models.ClosureEvent) {}

type Config struct {
	Addr        string
	CORSOrigins []string

	// limits POST /reset and POST /maps/grid/rebuild
	MaintenanceEvery time.Duration
	MaintenanceBurst int

	ShutdownTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		Addr:             "0.0.0.0:8000",
		CORSOrigins:      []string{"*"},
		MaintenanceEvery: 4 * time.Second,
		MaintenanceBurst: 4,
		ShutdownTimeout:  10 * time.Second,
	}
}

type Server struct {
	cfg       Config
	repo      Repository
	rebuilder GridRebuilder
	reseeder  Reseeder
	notifier  Notifier
	grid      grid.Manager
	metrics   metrics.Metrics
	limiter   *rate.Limiter
	log       zerolog.Logger
	now       func() time.Time

	lis net.Listener
}

func NewServer(
	cfg Config,
	repo Repository,
	rebuilder GridRebuilder,
	reseeder Reseeder,
	notifier Notifier,
	gridManager grid.Manager,
	m metrics.Metrics,
) *Server {
	if m == nil {
		m = metrics.Nop{}
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if cfg.MaintenanceEvery <= 0 {
		cfg.MaintenanceEvery = DefaultConfig().MaintenanceEvery
	}
	if cfg.MaintenanceBurst <= 0 {
		cfg.MaintenanceBurst = DefaultConfig().MaintenanceBurst
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultConfig().ShutdownTimeout
	}
	return &Server{
		cfg:       cfg,
		repo:      repo,
		rebuilder: rebuilder,
		reseeder:  reseeder,
		notifier:  notifier,
		grid:      gridManager,
		metrics:   m,
		limiter:   rate.NewLimiter(rate.Every(cfg.MaintenanceEvery), cfg.MaintenanceBurst),
		log:       log.With().Str("component", "mapserver").Logger(),
		now:       time.Now,
	}
}

func (srv *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.HandleFunc("/health", srv.health).Methods(http.MethodGet)
	r.HandleFunc("/map", srv.getMap).Methods(http.MethodGet)
	r.HandleFunc("/map/visualization", srv.mapVisualization).Methods(http.MethodGet)
	r.HandleFunc("/map/bounds", srv.mapBounds).Methods(http.MethodGet)

	r.HandleFunc("/nodes", srv.listNodes).Methods(http.MethodGet)
	r.HandleFunc("/nodes/{id}", srv.getNode).Methods(http.MethodGet)
	r.HandleFunc("/nodes/{id}", srv.updateNode).Methods(http.MethodPut)

	r.HandleFunc("/edges", srv.listEdges).Methods(http.MethodGet)
	r.HandleFunc("/edges/{id}", srv.getEdge).Methods(http.MethodGet)
	r.HandleFunc("/edges/{id}", srv.updateEdge).Methods(http.MethodPut)

	r.HandleFunc("/closures", srv.listClosures).Methods(http.MethodGet)
	r.HandleFunc("/closures", srv.createClosure).Methods(http.MethodPost)
	r.HandleFunc("/closures/{id}", srv.getClosure).Methods(http.MethodGet)
	r.HandleFunc("/closures/{id}", srv.deleteClosure).Methods(http.MethodDelete)

	for _, k := range []nodeKind{poiKind, seatKind, gateKind} {
		r.HandleFunc("/"+k.path, srv.listKind(k)).Methods(http.MethodGet)
		r.HandleFunc("/"+k.path+"/{id}", srv.getKind(k)).Methods(http.MethodGet)
		r.HandleFunc("/"+k.path+"/{id}", srv.updateKind(k)).Methods(http.MethodPut)
	}

	// nearest is registered first, otherwise {id} swallows it
	r.HandleFunc("/emergency-routes", srv.listEmergencyRoutes).Methods(http.MethodGet)
	r.HandleFunc("/emergency-routes/nearest", srv.nearestEmergencyRoute).Methods(http.MethodGet)
	r.HandleFunc("/emergency-routes/{id}", srv.getEmergencyRoute).Methods(http.MethodGet)

	r.HandleFunc("/maps/grid/config", srv.gridConfig).Methods(http.MethodGet)
	r.HandleFunc("/maps/grid/tiles", srv.gridTiles).Methods(http.MethodGet)
	r.HandleFunc("/maps/grid/stats", srv.gridStats).Methods(http.MethodGet)
	r.HandleFunc("/maps/grid/rebuild", srv.limited(srv.gridRebuild)).Methods(http.MethodPost)

	r.HandleFunc("/reset", srv.limited(srv.reset)).Methods(http.MethodPost)

	cors := handlers.CORS(
		handlers.AllowedOrigins(srv.cfg.CORSOrigins),
		handlers.AllowedMethods([]string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions,
		}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	// observe sits outside mux so unmatched routes are counted too
	return cors(handlers.CompressHandler(srv.observe(r)))
}

// Listen binds the configured address. Calling it again is a no-op once
// the address is bound.
func (srv *Server) Listen() error {
	if srv.lis != nil {
		return nil
	}
	lis, err := net.Listen("tcp", srv.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen %s: %w", srv.cfg.Addr, err)
	}
	srv.lis = lis
	return nil
}

// Serve accepts connections on the bound address, binding it first if
// Listen was not called, and blocks until ctx is done or the listener fails.
func (srv *Server) Serve(ctx context.Context) error {
	if err := srv.Listen(); err != nil {
		return err
	}
	return srv.serve(ctx, srv.lis)
}

func (srv *Server) serve(ctx context.Context, lis net.Listener) error {
	httpSrv := &http.Server{
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		// requests keep ctx values but outlive its cancellation so that
		// Shutdown can drain them
		BaseContext: func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.Serve(lis)
	}()
	srv.log.Warn().Msgf("api server listening on %s", lis.Addr())

	select {
	case err := <-errCh:
		return fmt.Errorf("api server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), srv.cfg.ShutdownTimeout)
	defer cancel()

	err := httpSrv.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("failed to shutdown api server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("api server stopped: %w", err)
	}
	srv.log.Warn().Msg("api server stopped")
	return nil
}
