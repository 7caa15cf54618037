package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"backend-pulsedash/internal/activity"
	"backend-pulsedash/internal/collector"
	"backend-pulsedash/internal/config"
	"backend-pulsedash/internal/db"
	"backend-pulsedash/internal/jobs"
	"backend-pulsedash/internal/profile"
	"backend-pulsedash/internal/stream"
	"backend-pulsedash/internal/vitals"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

var mainDepsProvider = defaultDeps
var mainRunner = realMain

func main() {
	_ = godotenv.Load()
	mainRunner(mainDepsProvider())
}

type mainDeps struct {
	loadConfig      func() config.Config
	connectPostgres func(config.Config) (*pgxpool.Pool, error)
	connectRedis    func(config.Config) *redis.Client
	notify          func(chan<- os.Signal, ...os.Signal)
	run             func(context.Context, config.Config, *pgxpool.Pool, *redis.Client, <-chan os.Signal) error
}

func defaultDeps() mainDeps {
	return mainDeps{
		loadConfig:      config.Load,
		connectPostgres: db.ConnectPostgres,
		connectRedis:    db.ConnectRedis,
		notify:          signal.Notify,
		run:             Run,
	}
}

func realMain(deps mainDeps) {
	cfg := deps.loadConfig()

	pg, err := deps.connectPostgres(cfg)
	if err != nil {
		log.Printf("postgres connection failed: %v", err)
	}

	rdb := deps.connectRedis(cfg)

	signals := make(chan os.Signal, 1)
	deps.notify(signals, syscall.SIGINT, syscall.SIGTERM)

	if err := deps.run(context.Background(), cfg, pg, rdb, signals); err != nil {
		log.Printf("worker exited with error: %v", err)
	}
}

// Run drains the collect queue until a termination signal arrives.
func Run(ctx context.Context, cfg config.Config, pg *pgxpool.Pool, rdb *redis.Client, signals <-chan os.Signal) error {
	if rdb == nil {
		return errors.New("worker requires a redis connection")
	}

	src := collector.NewClient(cfg.GarminAPIBase, cfg.GarminAPIToken, cfg.GarminDisplayName)
	sync := collector.NewSync(src, vitals.NewService(pg), activity.NewService(pg), profile.NewService(pg))
	svc := jobs.NewService(pg, rdb, cfg.SyncQueue, stream.NewHub(rdb))
	worker := jobs.NewWorker(svc, sync)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		worker.Run(runCtx)
		close(done)
	}()

	select {
	case <-signals:
	case <-ctx.Done():
	}

	cancel()
	// Closing the client unblocks a queue read in flight.
	_ = rdb.Close()
	<-done

	if pg != nil {
		pg.Close()
	}
	return nil
}
