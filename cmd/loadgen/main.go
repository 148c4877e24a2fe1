// Command loadgen fires concurrent roll requests at the action API and
// reports how many the server accepted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/monopoly-client/internal/action"
	"github.com/DoyleJ11/monopoly-client/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	total := flag.Int("n", 100, "number of roll requests")
	workers := flag.Int("c", 8, "concurrent requests")
	room := flag.String("room", "", "room to roll in (defaults to MONOPOLY_ROOM)")
	flag.Parse()

	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	if *room != "" {
		cfg.Room = *room
	}
	log, err := config.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	res, err := fire(ctx, action.New(cfg.APIURL, cfg.HTTPTimeout, log), cfg.Room, *total, *workers, log)
	log.Info("loadgen done",
		zap.Int64("ok", res.OK),
		zap.Int64("rejected", res.Rejected),
		zap.Int64("failed", res.Failed),
		zap.Duration("elapsed", time.Since(start)))
	return err
}

type roller interface {
	Roll(ctx context.Context, req action.RollRequest) (action.RollResult, error)
}

type tally struct {
	OK       int64
	Rejected int64
	Failed   int64
}

// fire sends total rolls, at most workers at a time, each from a fresh player.
func fire(ctx context.Context, client roller, room string, total, workers int, log *zap.Logger) (tally, error) {
	var ok, rejected, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < total; i++ {
		id := uuid.NewString()
		req := action.RollRequest{PlayerID: id, Room: room, Name: "Load-" + id[:4]}
		g.Go(func() error {
			_, err := client.Roll(gctx, req)
			var se *action.StatusError
			switch {
			case err == nil:
				ok.Add(1)
			case errors.As(err, &se):
				// the server refusing a roll is an answer, not a failure
				rejected.Add(1)
			case gctx.Err() != nil:
				return gctx.Err()
			default:
				failed.Add(1)
				log.Debug("roll", zap.Error(err))
			}
			return nil
		})
	}
	err := g.Wait()
	return tally{OK: ok.Load(), Rejected: rejected.Load(), Failed: failed.Load()}, err
}
