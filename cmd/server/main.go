package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"timeherosim/internal/adapter/gamedata"
	httpadapter "timeherosim/internal/adapter/http"
	metricsinmem "timeherosim/internal/adapter/metrics/inmemory"
	"timeherosim/internal/adapter/ws"
	"timeherosim/internal/app/replay"
	"timeherosim/internal/app/session"
	"timeherosim/internal/app/sim"
	"timeherosim/internal/config"

	"github.com/cloudwego/hertz/pkg/app/server"
)

func main() {
	configPath := flag.String("config", os.Getenv("TIMEHERO_CONFIG"), "path to server yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	data, err := gamedata.Load(cfg.GameData)
	if err != nil {
		logger.Error("load game data", "path", cfg.GameData, "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := openStorage(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Error("open storage", "driver", cfg.Storage.Driver, "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.close(); err != nil {
			logger.Warn("close storage", "err", err)
		}
	}()

	recorder := metricsinmem.NewRecorder()
	sessions := &session.Manager{
		Base:     cfg.Sim(data, logger),
		Interval: cfg.Interval(),
		Metrics:  recorder,
		Journal:  store.journal,
		Logger:   logger,
	}
	defer sessions.Close()
	if store.remember != nil {
		sessions.OnSession(func(e *sim.Engine) {
			if err := store.remember(ctx, e.RunID()); err != nil {
				logger.Warn("remember run", "err", err)
			}
		})
	}

	hub := ws.NewHub(logger)
	sessions.OnSession(hub.Attach)
	var wsServer *http.Server
	if cfg.HTTP.WSAddr != "" {
		wsServer = &http.Server{Addr: cfg.HTTP.WSAddr, Handler: hub, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := wsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("websocket server", "err", err)
			}
		}()
	}

	if err := bootstrap(ctx, sessions, store, cfg.Simulation); err != nil {
		logger.Error("start simulation", "err", err)
		os.Exit(1)
	}

	h := httpadapter.Handler{
		Sessions: sessions,
		ReplayUC: replay.UseCase{Events: store.journal.Events},
		Runs:     store.journal.Runs,
		KPI:      recorder,
	}
	s := server.Default(server.WithHostPorts(cfg.HTTP.Addr))
	h.RegisterRoutes(s)

	logger.Info("timehero simulator listening", "addr", cfg.HTTP.Addr, "ws_addr", cfg.HTTP.WSAddr, "store", cfg.Storage.Driver)
	s.Spin()

	if wsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		_ = wsServer.Shutdown(shutdownCtx)
	}
}

// bootstrap optionally resumes the last run and starts it.
func bootstrap(ctx context.Context, sessions *session.Manager, store storage, sc config.Simulation) error {
	if !sc.Resume && !sc.AutoStart {
		return nil
	}
	req := session.InitRequest{}
	if sc.Resume {
		runID, err := store.lastRun(ctx)
		if err != nil {
			return err
		}
		req.Resume = runID
	}
	if _, err := sessions.Initialize(ctx, req); err != nil {
		return err
	}
	if !sc.AutoStart {
		return nil
	}
	r, err := sessions.Runner()
	if err != nil {
		return err
	}
	err = r.Start(ctx, sc.Speed)
	if errors.Is(err, sim.ErrCompleted) {
		return nil
	}
	return err
}
