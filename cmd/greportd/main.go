// Command greportd is the engine's long-lived process (§5, §6.3): it loads
// configuration, opens and migrates the warehouse, wires the Credential
// Registry, Host Client(s), Sync Coordinator, Derivation Layer, Aggregator,
// and optional Scheduler behind the HTTP Surface, and serves until signaled
// to stop.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"go.uber.org/zap"

	"github.com/prabasiva/greport/internal/derive"
	"github.com/prabasiva/greport/internal/hostclient"
	"github.com/prabasiva/greport/internal/httpapi"
	"github.com/prabasiva/greport/internal/platform/database"
	"github.com/prabasiva/greport/internal/ratelimit"
	"github.com/prabasiva/greport/internal/registry"
	"github.com/prabasiva/greport/internal/scheduler"
	gsync "github.com/prabasiva/greport/internal/sync"
	"github.com/prabasiva/greport/internal/warehouse"
	"github.com/prabasiva/greport/internal/warehouse/migrations"
	"github.com/prabasiva/greport/pkg/config"
	"github.com/prabasiva/greport/pkg/logger"
)

// Exit codes per §6.3: 0 success, 1 unrecoverable startup error, 2
// configuration error.
const (
	exitOK          = 0
	exitStartupErr  = 1
	exitConfigErr   = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "greportd: load config: %v\n", err)
		return exitConfigErr
	}

	log := logger.New(logger.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		FilePrefix: cfg.Logging.FilePrefix,
	})

	db, err := database.Open(context.Background(), cfg.Database.URL, database.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
	})
	if err != nil {
		log.WithError(err).Error("open database")
		return exitStartupErr
	}
	defer db.Close()

	if err := migrations.Apply(db); err != nil {
		log.WithError(err).Error("apply migrations")
		return exitStartupErr
	}

	store := warehouse.New(db)

	var validationCache registry.ValidationCache
	if cfg.Redis.Addr != "" {
		validationCache = registry.NewRedisCache(redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr}))
	} else {
		validationCache = registry.NewMemoryCache()
	}

	limiters := ratelimit.NewRegistry(ratelimit.DefaultConfig())
	wire := newHostWiring(limiters, log)
	reg := registry.New(cfg, nil, validationCache, wire.clientFor)

	coordinators := newCoordinatorCache(store, wire, log)
	coordinatorFor := func(ctx context.Context, owner string) (*gsync.Coordinator, string, error) {
		return coordinators.For(ctx, reg, owner)
	}
	syncFn := func(ctx context.Context, owner, name string, opts gsync.Options) (gsync.Result, error) {
		coord, _, err := coordinatorFor(ctx, owner)
		if err != nil {
			return gsync.Result{}, err
		}
		return coord.SyncRepository(ctx, owner, name, opts)
	}

	accessLog, err := zap.NewProduction()
	if err != nil {
		accessLog = zap.NewNop()
	}
	defer accessLog.Sync()

	router := httpapi.NewRouter(httpapi.Deps{
		Store:          store,
		Sync:           syncFn,
		CoordinatorFor: coordinatorFor,
		SLADefaults:    deriveSLAConfig(cfg),
		StaleThreshold: time.Duration(cfg.Sync.StaleDays) * 24 * time.Hour,
		Logger:         log,
		AccessLog:      accessLog,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.BindAddress, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	sched, err := scheduler.New(cfg.Scheduler.BatchSyncInterval, func(ctx context.Context) error {
		return batchSyncAll(ctx, store, coordinatorFor)
	}, log)
	if err != nil {
		log.WithError(err).Error("configure scheduler")
		return exitConfigErr
	}

	serverErrs := make(chan error, 1)
	go func() {
		log.WithField("addr", server.Addr).Info("greportd listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrs <- err
		}
	}()

	if sched != nil {
		if err := sched.Start(context.Background()); err != nil {
			log.WithError(err).Error("start scheduler")
			return exitStartupErr
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.WithField("signal", sig.String()).Info("shutting down")
	case err := <-serverErrs:
		log.WithError(err).Error("server error")
		return exitStartupErr
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			log.WithError(err).Warn("scheduler shutdown")
		}
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server shutdown")
	}

	return exitOK
}

// deriveSLAConfig translates the config-file SLA policy into the
// Derivation Layer's derive.SLAConfig shape (§6.2).
func deriveSLAConfig(cfg *config.Config) (out derive.SLAConfig) {
	out.ResponseTimeHours = cfg.SLA.ResponseTimeHours
	out.ResolutionTimeHours = cfg.SLA.ResolutionTimeHours
	if len(cfg.SLA.Priority) > 0 {
		out.PriorityOverrides = make(map[string]derive.PriorityWindow, len(cfg.SLA.Priority))
		for label, override := range cfg.SLA.Priority {
			out.PriorityOverrides[label] = derive.PriorityWindow{
				ResponseTimeHours:   override.ResponseTimeHours,
				ResolutionTimeHours: override.ResolutionTimeHours,
			}
		}
	}
	return out
}

// hostWiring builds a *hostclient.Client for a resolved credential, pacing
// it with the shared per-credential ratelimit.Registry and logging its wire
// traffic on the zerolog stratum (kept separate from the domain logrus
// stratum and the HTTP access-log zap stratum — three independent logging
// concerns, three independent libraries).
type hostWiring struct {
	limiters *ratelimit.Registry
	wire     zerolog.Logger
}

func newHostWiring(limiters *ratelimit.Registry, log *logger.Logger) *hostWiring {
	level := zerolog.InfoLevel
	if log != nil {
		if parsed, err := zerolog.ParseLevel(log.GetLevel().String()); err == nil {
			level = parsed
		}
	}
	return &hostWiring{
		limiters: limiters,
		wire:     zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("component", "hostclient").Logger(),
	}
}

func (h *hostWiring) clientFor(cred hostclient.Credential) *hostclient.Client {
	return hostclient.New(cred, h.limiters.For(cred.ID), h.wire)
}

// coordinatorCache hands out one gsync.Coordinator per credential ID,
// mirroring the registry's own client cache (registry.go's clientFor) so a
// batch sync across many organizations reuses connections and rate-limit
// state instead of rebuilding them per repository.
type coordinatorCache struct {
	store *warehouse.Store
	wire  *hostWiring
	log   *logger.Logger

	mu           sync.Mutex
	coordinators map[string]*gsync.Coordinator
}

func newCoordinatorCache(store *warehouse.Store, wire *hostWiring, log *logger.Logger) *coordinatorCache {
	return &coordinatorCache{
		store:        store,
		wire:         wire,
		log:          log,
		coordinators: make(map[string]*gsync.Coordinator),
	}
}

// For resolves owner's credential and hands back its cached Coordinator
// alongside the credential ID, matching gsync.CoordinatorFor's shape so
// this method can be bound directly into sync.RunBatch — the credential ID
// is what RunBatch groups repositories by to serialize same-credential
// syncs while letting distinct-credential groups run concurrently.
func (c *coordinatorCache) For(ctx context.Context, reg *registry.Registry, owner string) (*gsync.Coordinator, string, error) {
	resolved, err := reg.Resolve(ctx, owner)
	if err != nil {
		return nil, "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if coord, ok := c.coordinators[resolved.Credential.ID]; ok {
		return coord, resolved.Credential.ID, nil
	}
	client := c.wire.clientFor(resolved.Credential)
	coord := gsync.New(c.store, client, c.log)
	c.coordinators[resolved.Credential.ID] = coord
	return coord, resolved.Credential.ID, nil
}

// batchSyncAll runs one sync per tracked repository through gsync.RunBatch,
// the scheduler's periodic equivalent of `POST /api/v1/sync`
// (internal/httpapi/repos.go's batchSync handler runs the exact same
// RunBatch call against the HTTP Surface's own CoordinatorFor closure) —
// distinct-credential groups sync concurrently, same-credential
// repositories stay serialized (spec.md lines 101, 176).
func batchSyncAll(ctx context.Context, store *warehouse.Store, coordinatorFor gsync.CoordinatorFor) error {
	repos, err := store.ListRepositories(ctx)
	if err != nil {
		return fmt.Errorf("list tracked repositories: %w", err)
	}
	refs := make([]gsync.RepoRef, len(repos))
	for i, repo := range repos {
		refs[i] = gsync.RepoRef{Owner: repo.Owner, Name: repo.Name}
	}
	batch := gsync.RunBatch(ctx, refs, coordinatorFor, gsync.BatchOptions{})
	for _, outcome := range batch.Outcomes {
		if outcome.Err != nil {
			return fmt.Errorf("sync %s/%s: %w", outcome.Repo.Owner, outcome.Repo.Name, outcome.Err)
		}
	}
	return nil
}
