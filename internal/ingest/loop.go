package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pricewatch/internal/catalog"
)

const defaultInterval = 12 * time.Hour

// Loop runs the fetch → extract → normalize → upsert-if-absent pipeline
// on a fixed interval. One Loop is started per process; it shares the
// catalog store with the HTTP API and never updates or deletes records,
// so a price that changes on the source page after first capture stays
// stale until someone edits it through the API.
type Loop struct {
	URL      string
	Interval time.Duration

	Fetcher   *Fetcher
	Extractor *Extractor
	Store     catalog.Store
	Log       *zap.Logger
	Metrics   *Metrics
}

// Run blocks until ctx is cancelled. The first pass starts immediately,
// later passes follow the ticker. A failed pass is logged and retried at
// the next tick; nothing short of cancellation stops the loop.
func (l *Loop) Run(ctx context.Context) {
	interval := l.Interval
	if interval <= 0 {
		interval = defaultInterval
	}

	l.Log.Info("ingest loop starting",
		zap.String("url", l.URL),
		zap.Duration("interval", interval),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	l.runPass(ctx)

	for {
		select {
		case <-ctx.Done():
			l.Log.Info("ingest loop stopping", zap.Error(ctx.Err()))
			return
		case <-ticker.C:
			l.runPass(ctx)
		}
	}
}

func (l *Loop) runPass(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := l.Pass(ctx); err != nil {
		l.Metrics.PassErrors.Inc()
		l.Log.Error("ingestion pass failed", zap.Error(err))
	}
}

// Pass performs one full ingestion pass. Fetch and parse failures abort
// the pass; a bad price or a store error on one item only skips that
// item. Running a pass twice over unchanged markup is a no-op: existing
// names are never touched.
func (l *Loop) Pass(ctx context.Context) error {
	log := l.Log.With(zap.String("pass_id", uuid.NewString()))
	log.Info("ingestion pass starting")

	body, err := l.Fetcher.Fetch(ctx, l.URL)
	if err != nil {
		return err
	}

	items, err := l.Extractor.Items(body)
	if err != nil {
		return err
	}

	var added, skipped, rejected int
	for item := range items {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		cost, err := NormalizePrice(item.RawPrice)
		if err != nil {
			rejected++
			log.Warn("dropping item with bad price",
				zap.String("title", item.Title),
				zap.Error(err),
			)
			continue
		}

		switch err := l.upsertIfAbsent(ctx, item.Title, cost); {
		case err == nil:
			added++
		case errors.Is(err, errAlreadyPresent):
			skipped++
		default:
			rejected++
			log.Error("store write failed",
				zap.String("title", item.Title),
				zap.Error(err),
			)
		}
	}

	l.Metrics.Passes.Inc()
	l.Metrics.ItemsAdded.Add(float64(added))
	l.Metrics.ItemsSkipped.Add(float64(skipped))
	l.Metrics.ItemsRejected.Add(float64(rejected))

	log.Info("ingestion pass finished",
		zap.Int("added", added),
		zap.Int("skipped", skipped),
		zap.Int("rejected", rejected),
	)
	return nil
}

var errAlreadyPresent = errors.New("record already present")

// upsertIfAbsent is a read-then-write: with a concurrent writer inserting
// the same name, both can pass the read and a duplicate slips in. That
// window is accepted; the API's create endpoint can duplicate names
// anyway.
func (l *Loop) upsertIfAbsent(ctx context.Context, name string, cost int64) error {
	_, found, err := l.Store.FindByName(ctx, name)
	if err != nil {
		return err
	}
	if found {
		return errAlreadyPresent
	}

	_, err = l.Store.Insert(ctx, name, cost)
	return err
}
