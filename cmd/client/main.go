package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/monopoly-client/internal/action"
	"github.com/DoyleJ11/monopoly-client/internal/config"
	"github.com/DoyleJ11/monopoly-client/internal/httpapi"
	"github.com/DoyleJ11/monopoly-client/internal/hub"
	"github.com/DoyleJ11/monopoly-client/internal/identity"
	"github.com/DoyleJ11/monopoly-client/internal/session"
	"github.com/DoyleJ11/monopoly-client/internal/telemetry"
	"github.com/DoyleJ11/monopoly-client/internal/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	wsURL := flag.String("ws-url", "", "websocket endpoint (overrides MONOPOLY_WS_URL)")
	room := flag.String("room", "", "room to join (overrides the stored room)")
	name := flag.String("name", "", "display name (overrides the stored name)")
	flag.Parse()

	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	if *wsURL != "" {
		cfg.WSURL = *wsURL
	}

	log, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Warn("close identity store", zap.Error(err))
		}
	}()

	self, err := identity.Resolve(ctx, store, identity.Identity{PlayerID: cfg.PlayerID, Name: cfg.PlayerName, Room: cfg.Room})
	if err != nil {
		return err
	}
	if self, err = override(ctx, store, self, *room, *name); err != nil {
		return err
	}
	log.Info("identity", zap.String("player", self.PlayerID), zap.String("name", self.Name), zap.String("room", self.Room))

	tel, err := telemetry.New(log)
	if err != nil {
		return err
	}

	sess, err := session.New(ctx, session.Options{
		Identity:   self,
		MaxPlayers: cfg.MaxPlayers,
		HopDelay:   cfg.HopDelay,
		Actions:    action.New(cfg.APIURL, cfg.HTTPTimeout, log),
		Store:      store,
		Log:        log,
		Telemetry:  tel,
	})
	if err != nil {
		return err
	}
	sup := ws.NewSupervisor(ws.Options{
		URL:          cfg.WSURL,
		Identity:     self,
		Heartbeat:    cfg.Heartbeat,
		WriteTimeout: cfg.WriteTimeout,
		Backoff:      ws.NewBackoff(cfg.ReconnectBase, cfg.ReconnectMax),
		Log:          log,
		Telemetry:    tel,
	}, sess)
	sess.Bind(sup)

	h := hub.NewHub(ctx, log)
	if err := h.Register(ctx, self.PlayerID, sess); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.DebugAddr,
		Handler:           httpapi.SetupRoutes(h, tel, log.Named("http")),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sup.Run(gctx) })
	g.Go(func() error {
		log.Info("debug http listening", zap.String("addr", cfg.DebugAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("debug http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		// Leaving the room ends the process.
		select {
		case <-sess.Done():
			log.Info("session ended")
			stop()
		case <-gctx.Done():
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return multierr.Combine(
			srv.Shutdown(shutdownCtx),
			h.Shutdown(shutdownCtx),
			sup.Close(),
		)
	})
	return g.Wait()
}

func openStore(cfg config.Config) (identity.Store, func() error, error) {
	switch cfg.IdentityStore {
	case config.StorePostgres:
		gs, err := identity.OpenPostgres(cfg.IdentityDSN, cfg.Room)
		if err != nil {
			return nil, nil, err
		}
		return gs, gs.Close, nil
	case config.StoreMemory:
		return identity.NewMemoryStore(), func() error { return nil }, nil
	default:
		return identity.NewFileStore(cfg.IdentityPath()), func() error { return nil }, nil
	}
}

// override applies command-line choices on top of the resolved identity.
func override(ctx context.Context, store identity.Store, id identity.Identity, room, name string) (identity.Identity, error) {
	changed := false
	if room != "" && room != id.Room {
		id.Room = room
		changed = true
	}
	if name != "" && name != id.Name {
		id.Name = name
		changed = true
	}
	if !changed {
		return id, nil
	}
	if err := store.Save(ctx, id); err != nil {
		return identity.Identity{}, fmt.Errorf("save identity: %w", err)
	}
	return id, nil
}
