// CLI tool to compute expenditure estimates outside the API, e.g. from a
// nightly job. Prints one JSON object per user to stdout.
// Usage: go run ./cmd/estimate -user 3 -weeks 4
//
//	go run ./cmd/estimate -all -concurrency 8
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lg/adaptive-tdee-go-api/expenditure"
	"lg/adaptive-tdee-go-api/logger"
	"lg/adaptive-tdee-go-api/store"
)

// result is one output line.
type result struct {
	UserID   int                              `json:"user_id"`
	Estimate *expenditure.ExpenditureEstimate `json:"estimate,omitempty"`
	Error    string                           `json:"error,omitempty"`
}

func main() {
	userID := flag.Int("user", 0, "user id to estimate")
	all := flag.Bool("all", false, "estimate every user")
	weeks := flag.Int("weeks", expenditure.DefaultLookbackWeeks, "lookback window in weeks")
	concurrency := flag.Int("concurrency", 4, "users estimated at once with -all")
	flag.Parse()

	logger.Init()
	defer logger.Sync()

	if (*userID == 0) == !*all {
		fmt.Fprintln(os.Stderr, "pass exactly one of -user N or -all")
		os.Exit(2)
	}
	if err := godotenv.Load(); err != nil {
		logger.Warn("no .env file loaded", zap.Error(err))
	}

	tuning, err := expenditure.LoadTuning(os.Getenv("ENGINE_TUNING_FILE"))
	if err != nil {
		logger.Fatal("invalid engine tuning", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pool, err := store.NewPool(ctx, os.Getenv("DB_URL"))
	if err != nil {
		logger.Fatal("database unavailable", zap.Error(err))
	}
	defer pool.Close()

	obs := store.NewObservations(pool)
	estimator := expenditure.NewEstimator(obs, obs, obs,
		expenditure.WithTuning(tuning),
		expenditure.WithLogger(logger.Named("expenditure")))

	ids := []int{*userID}
	if *all {
		if ids, err = obs.UserIDs(ctx); err != nil {
			logger.Fatal("listing users", zap.Error(err))
		}
	}

	failed := run(ctx, estimator, ids, *weeks, *concurrency, os.Stdout)
	if failed > 0 {
		logger.Error("some estimates failed", zap.Int("failed", failed), zap.Int("users", len(ids)))
		os.Exit(1)
	}
}

// run estimates each user with at most limit in flight and writes one JSON
// line per user. A failing user is reported in its line and does not stop the
// others. Returns the number of failures.
func run(ctx context.Context, e *expenditure.Estimator, ids []int, weeks, limit int, out io.Writer) int {
	var (
		mu     sync.Mutex
		failed int
		enc    = json.NewEncoder(out)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, limit))
	for _, id := range ids {
		g.Go(func() error {
			r := result{UserID: id}
			est, err := e.Estimate(gctx, id, weeks)
			if err != nil {
				r.Error = err.Error()
			} else {
				r.Estimate = &est
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
			}
			return enc.Encode(r)
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("writing results", zap.Error(err))
	}
	return failed
}
