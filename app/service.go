// Package app wires the configuration into a running fleet service: the
// registry, the simulation engine, the HTTP API and the optional MQTT and
// metrics backends.
package app

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	apifleet "github.com/hospigo/fleetd/api/fleet"
	"github.com/hospigo/fleetd/config"
	"github.com/hospigo/fleetd/core/fleet"
	coremetrics "github.com/hospigo/fleetd/core/metrics"
	"github.com/hospigo/fleetd/core/notify"
	"github.com/hospigo/fleetd/core/sim"
	"github.com/hospigo/fleetd/infra/logger"
	"github.com/hospigo/fleetd/infra/metrics"
	"github.com/hospigo/fleetd/infra/mqtt"
	"github.com/hospigo/fleetd/infra/roster"
	"github.com/hospigo/fleetd/infra/store"
	"github.com/hospigo/fleetd/internal/eventbus"
)

// Service orchestrates the fleet engine and its outward surfaces.
type Service struct {
	Engine   *sim.Engine
	Registry *fleet.Registry

	cfg    *config.Config
	bus    eventbus.EventBus
	notes  *notify.Log
	hub    *apifleet.Hub
	server *apifleet.Server
	roster *roster.Client
	mqttc  mqtt.Publisher
	closer func() error
	log    logger.Logger
}

// New creates a Service from the configuration.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	snapStore, closeStore := newSnapshotStore(ctx, cfg.Store, logg)

	var sinks []coremetrics.FleetSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(
			cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket))
	}
	var sink coremetrics.FleetSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	bus := eventbus.New()
	reg := fleet.NewRegistry(snapStore, rand.New(rand.NewSource(time.Now().UnixNano())), logger.New("registry"))
	notes := notify.NewLog(notify.DefaultMaxEntries)
	engine := sim.NewEngine(reg, bus, sink, notes, logger.New("engine"), cfg.Sim)
	hub := apifleet.NewHub(bus, logger.New("ws_hub"))
	server := apifleet.NewServer(engine, reg, notes, hub, logger.New("api"))

	svc := &Service{
		Engine:   engine,
		Registry: reg,
		cfg:      cfg,
		bus:      bus,
		notes:    notes,
		hub:      hub,
		server:   server,
		roster:   roster.NewClient(cfg.Roster, logger.New("roster")),
		closer:   closeStore,
		log:      logg,
	}

	if cfg.MQTT.Enabled {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.mqttc = client
	}
	return svc, nil
}

// newSnapshotStore connects to Redis when configured, falling back to the
// in-memory store so the simulation keeps running without persistence.
func newSnapshotStore(ctx context.Context, cfg store.Config, log logger.Logger) (fleet.SnapshotStore, func() error) {
	if cfg.URL == "" {
		return store.NewMemoryStore(), func() error { return nil }
	}
	rs, err := store.NewRedisStore(ctx, cfg)
	if err != nil {
		log.Warnf("redis unavailable, snapshots held in memory: %v", err)
		return store.NewMemoryStore(), func() error { return nil }
	}
	return rs, rs.Close
}

// Run initializes the fleet and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	robots := s.roster.Fetch(ctx)
	if _, err := s.Registry.Initialize(ctx, robots); err != nil {
		return fmt.Errorf("initialize fleet: %w", err)
	}
	s.log.Infof("fleet initialized with %d robots", len(s.Registry.Snapshot()))

	go s.Engine.Run(ctx)
	go s.hub.Run(ctx)
	if s.mqttc != nil {
		mqtt.StartPublisher(ctx, s.bus, s.mqttc, s.cfg.MQTT, logger.New("mqtt_publisher"))
	}
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort, s.log); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{Addr: s.cfg.HTTP.Addr, Handler: s.server.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api server shutdown: %v", err)
		}
	}()
	s.log.Infof("api listening on %s", s.cfg.HTTP.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.mqttc != nil {
		s.mqttc.Close()
	}
	s.bus.Close()
	return s.closer()
}
