package main

import (
	"context"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/resellkit/research-core/internal/intake"
	"github.com/resellkit/research-core/internal/model"
)

var (
	batchManifest string
	batchSheet    string
	batchLimit    int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Batch research items from a manifest file",
	Long:  "Reads an item manifest (CSV or XLSX), saves the items, and researches them concurrently.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initRunEnv(ctx, "batch")
		if err != nil {
			return err
		}
		defer env.Close()

		items, err := intake.ReadManifest(batchManifest, intake.Options{SheetName: batchSheet})
		if err != nil {
			return err
		}

		if err := env.Store.SaveItems(ctx, items); err != nil {
			return eris.Wrap(err, "save manifest items")
		}

		return processBatch(ctx, items, batchLimit, cfg.Batch.MaxConcurrentItems, func(ctx context.Context, item model.Item) (*model.ResearchRun, error) {
			return env.Runner.Run(ctx, item)
		})
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchManifest, "manifest", "", "path to the item manifest (.csv or .xlsx, required)")
	batchCmd.Flags().StringVar(&batchSheet, "sheet", "", "XLSX sheet name (first sheet when empty)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of items to research (0 = all)")
	_ = batchCmd.MarkFlagRequired("manifest")
	rootCmd.AddCommand(batchCmd)
}

// researchFunc is the callback signature for researching one item.
type researchFunc func(ctx context.Context, item model.Item) (*model.ResearchRun, error)

// processBatch applies limit, then researches items concurrently using the
// given research function. Individual failures are logged, not fatal.
func processBatch(ctx context.Context, items []model.Item, limit, concurrency int, research researchFunc) error {
	if len(items) == 0 {
		zap.L().Info("no items in manifest")
		return nil
	}

	// Apply limit
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	zap.L().Info("processing batch",
		zap.Int("items", len(items)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64

	for _, item := range items {
		g.Go(func() error {
			log := zap.L().With(zap.String("item_id", item.ID), zap.String("item", item.Name))

			run, err := research(gctx, item)
			if err != nil {
				failed.Add(1)
				log.Error("research failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}

			succeeded.Add(1)
			if run.Result != nil {
				log.Info("research complete",
					zap.String("stop_reason", string(run.Result.StopReason)),
					zap.Float64("completion_score", run.Result.CompletionScore),
					zap.Bool("ready_to_publish", run.Result.ReadyToPublish),
				)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}
