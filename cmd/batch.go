package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

var (
	batchFile  string
	batchLimit int
)

// batchInput is the YAML shape of a batch file.
type batchInput struct {
	Targets []string `yaml:"targets"`
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Ingest companies from a YAML target list",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("batch"); err != nil {
			return err
		}

		targets, err := loadBatchFile(batchFile)
		if err != nil {
			return err
		}

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		return processBatch(ctx, e, targets, batchLimit, cfg.Batch.MaxConcurrent, cfg.Batch.RequestsPerSec)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "YAML file with a targets list (required)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of targets to process (0 = all)")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}

func loadBatchFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read batch file %s", path)
	}

	var in batchInput
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, eris.Wrapf(err, "parse batch file %s", path)
	}

	var targets []string
	for _, t := range in.Targets {
		if t = strings.TrimSpace(t); t != "" {
			targets = append(targets, t)
		}
	}
	return targets, nil
}

// processBatch applies limit, then ingests targets concurrently while a
// shared limiter paces the model calls. Individual failures do not abort
// the batch.
func processBatch(ctx context.Context, e *env, targets []string, limit, concurrency int, perSec float64) error {
	if len(targets) == 0 {
		zap.L().Info("no targets to process")
		return nil
	}

	if limit > 0 && len(targets) > limit {
		targets = targets[:limit]
	}

	zap.L().Info("processing batch",
		zap.Int("targets", len(targets)),
		zap.Int("concurrency", concurrency),
	)

	limiter := rate.NewLimiter(rate.Limit(perSec), 1)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var stored, skipped, failed atomic.Int64

	for _, target := range targets {
		g.Go(func() error {
			log := zap.L().With(zap.String("target", target))

			if err := limiter.Wait(gctx); err != nil {
				return err // context canceled
			}

			rec, entry, err := ingestOne(gctx, e, target)
			switch {
			case err != nil && strings.Contains(err.Error(), "already exists"):
				skipped.Add(1)
				log.Info("skipped existing company")
			case err != nil:
				failed.Add(1)
				log.Error("ingest failed", zap.Error(err))
			case entry == nil:
				skipped.Add(1)
				log.Warn("record not stored",
					zap.String("error", rec.Error),
					zap.String("warning", rec.Warning),
				)
			default:
				stored.Add(1)
				log.Info("company stored", zap.String("id", entry.ID))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("stored", stored.Load()),
		zap.Int64("skipped", skipped.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}
