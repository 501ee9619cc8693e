// Package ingest resolves batches of time-ago phrases and stores the
// outcome of each one, resuming where an earlier run stopped.
package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/japaniel/timeago/pkg/db"
	"github.com/japaniel/timeago/pkg/patterns"
	"github.com/japaniel/timeago/pkg/timeago"
)

// WorkerPoolInterface abstracts the worker pool so tests can inject failing implementations.
type WorkerPoolInterface interface {
	Start(ctx context.Context)
	Submit(Job) error
	// SubmitCtx attempts to enqueue a job but returns promptly if ctx is canceled.
	SubmitCtx(ctx context.Context, job Job) error
	Close()
}

// TableSource hands out the pattern table of a locale. *patterns.Registry
// implements it.
type TableSource interface {
	Get(locale string) (*timeago.PatternTable, error)
}

// Item is one phrase to resolve, e.g. {"tr", "3 saat önce"}.
type Item struct {
	Locale string
	Phrase string
}

// Stats counts the outcomes of an Ingest call.
type Stats struct {
	Parsed        int
	NoMatch       int
	Ambiguous     int
	UnknownLocale int
}

// Total is the number of items stored.
func (s Stats) Total() int { return s.Parsed + s.NoMatch + s.Ambiguous + s.UnknownLocale }

// Ingester resolves phrases and saves the results to the database.
type Ingester struct {
	DB     *sql.DB
	Tables TableSource
	// Now is the reference time phrases are resolved against.
	Now       func() time.Time
	BatchSize int
	// Logger is used for informational messages (e.g. resume status). nil means no logging.
	Logger *slog.Logger
	// OnProgress is called periodically with the number of processed items and total items.
	OnProgress func(current, total int)

	// Concurrency settings
	Workers int

	// PoolFactory allows tests to inject custom worker pool implementations.
	PoolFactory func(workers, queue int) WorkerPoolInterface
}

// NewIngester creates a new Ingester resolving against the default locale
// registry and the wall clock.
func NewIngester(conn *sql.DB) *Ingester {
	return &Ingester{
		DB:        conn,
		Tables:    patterns.Default,
		Now:       time.Now,
		BatchSize: 50,
		Workers:   4,
	}
}

// processedItem holds the result of resolving one phrase before it is stored.
type processedItem struct {
	Index       int
	Observation db.Observation
	Error       error
}

// Ingest resolves items and stores one observation per item using concurrent
// workers and batched writes. Observations are written in item order, and the
// source's progress is checkpointed with each one so a later call with the
// same items skips what was already stored.
func (ig *Ingester) Ingest(ctx context.Context, sourceID int64, items []Item) (Stats, error) {
	var stats Stats

	startIdx, err := db.GetSourceProgress(ig.DB, sourceID)
	if err != nil {
		return stats, fmt.Errorf("read progress: %w", err)
	}
	total := len(items)
	if startIdx > 0 && ig.Logger != nil {
		ig.Logger.Info("resuming ingest", "source", sourceID, "skip", startIdx, "total", total)
	}
	if startIdx >= total {
		return stats, nil
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	workers := ig.Workers
	if workers <= 0 {
		workers = 1
	}
	batchSize := ig.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}
	now := time.Now
	if ig.Now != nil {
		now = ig.Now
	}
	ref := now()

	var wp WorkerPoolInterface
	if ig.PoolFactory != nil {
		wp = ig.PoolFactory(workers, workers*2)
	} else {
		wp = NewWorkerPool(workers, workers*2)
	}
	resultCh := make(chan processedItem, workers*2)
	doneCh := make(chan error, 1)

	var parsed, noMatch, ambiguous, unknown int64

	bw := NewBatchWriter(ig.DB, batchSize, 100*time.Millisecond)
	var batchErr error
	var batchErrMu sync.Mutex
	bw.OnError = func(e error) {
		batchErrMu.Lock()
		if batchErr == nil {
			batchErr = e
		}
		batchErrMu.Unlock()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var closeResults sync.Once
	defer func() {
		wp.Close()
		closeResults.Do(func() { close(resultCh) })
		_ = bw.Close()
	}()

	wp.Start(ctx)

	// store queues the observation of one item and its checkpoint. Outcomes
	// are counted once the batch holding them has committed.
	store := func(item processedItem) error {
		o := item.Observation
		counter := &parsed
		switch o.ErrorKind {
		case db.ErrorKindNoMatch:
			counter = &noMatch
		case db.ErrorKindAmbiguous:
			counter = &ambiguous
		case db.ErrorKindUnknownLocale:
			counter = &unknown
		}
		return bw.SubmitWithCallback(func(ctx context.Context, tx *sql.Tx) error {
			if _, err := db.InsertObservation(tx, o); err != nil {
				return fmt.Errorf("store item %d: %w", item.Index, err)
			}
			if err := db.UpdateSourceProgress(tx, sourceID, item.Index+1); err != nil {
				return fmt.Errorf("save progress: %w", err)
			}
			return nil
		}, func() { atomic.AddInt64(counter, 1) })
	}

	// Consumer: reorder results and hand contiguous runs to the batch writer.
	go func() {
		defer close(doneCh)
		buffer := make(map[int]processedItem)
		nextIdx := startIdx

		flush := func() error {
			for {
				item, ok := buffer[nextIdx]
				if !ok {
					return nil
				}
				delete(buffer, nextIdx)
				if err := store(item); err != nil {
					return err
				}
				nextIdx++
				if ig.OnProgress != nil && nextIdx%batchSize == 0 {
					ig.OnProgress(nextIdx, total)
				}
			}
		}

		for {
			select {
			case <-ctx.Done():
				doneCh <- ctx.Err()
				return
			case res, ok := <-resultCh:
				if !ok {
					if err := flush(); err != nil {
						doneCh <- err
						return
					}
					if ig.OnProgress != nil {
						ig.OnProgress(nextIdx, total)
					}
					doneCh <- nil
					return
				}
				if res.Error != nil {
					cancel()
					doneCh <- res.Error
					return
				}
				buffer[res.Index] = res
				if err := flush(); err != nil {
					cancel()
					doneCh <- err
					return
				}
			}
		}
	}()

	var submitErr error
Loop:
	for i := startIdx; i < total; i++ {
		select {
		case <-ctx.Done():
			break Loop
		default:
		}

		idx := i
		it := items[i]
		job := func(ctx context.Context) error {
			res := ig.processItem(idx, sourceID, it, ref)
			select {
			case resultCh <- res:
			case <-ctx.Done():
			}
			return nil
		}

		if err := wp.SubmitCtx(ctx, job); err != nil {
			if errors.Is(err, ctx.Err()) || errors.Is(err, ErrPoolClosed) {
				break Loop
			}
			submitErr = fmt.Errorf("submit item %d: %w", idx, err)
			cancel()
			break Loop
		}
	}

	// Workers are done once the pool is closed, so no more sends can happen.
	wp.Close()
	closeResults.Do(func() { close(resultCh) })

	consumerErr := <-doneCh
	if submitErr != nil {
		consumerErr = submitErr
	}
	if err := bw.Close(); err != nil && consumerErr == nil {
		consumerErr = err
	}
	batchErrMu.Lock()
	if batchErr != nil && consumerErr == nil {
		consumerErr = batchErr
	}
	batchErrMu.Unlock()

	stats = Stats{
		Parsed:        int(atomic.LoadInt64(&parsed)),
		NoMatch:       int(atomic.LoadInt64(&noMatch)),
		Ambiguous:     int(atomic.LoadInt64(&ambiguous)),
		UnknownLocale: int(atomic.LoadInt64(&unknown)),
	}
	if consumerErr == nil && ig.Logger != nil {
		ig.Logger.Debug("ingest finished", "source", sourceID, "parsed", stats.Parsed,
			"no_match", stats.NoMatch, "ambiguous", stats.Ambiguous, "unknown_locale", stats.UnknownLocale)
	}
	return stats, consumerErr
}

// processItem parses and resolves one phrase. Phrases that cannot be parsed
// become observations with an error kind; only unexpected errors abort.
func (ig *Ingester) processItem(index int, sourceID int64, it Item, now time.Time) processedItem {
	o := db.Observation{
		SourceID:  sourceID,
		ItemIndex: index,
		Locale:    it.Locale,
		Phrase:    it.Phrase,
	}
	res := processedItem{Index: index}

	table, err := ig.Tables.Get(it.Locale)
	if err != nil {
		if !errors.Is(err, patterns.ErrUnknownLocale) && !errors.Is(err, timeago.ErrConfiguration) {
			res.Error = err
			return res
		}
		o.ErrorKind = db.ErrorKindUnknownLocale
		res.Observation = o
		return res
	}

	d, err := table.Parse(it.Phrase)
	switch {
	case err == nil:
		ts := timeago.Resolve(d, now)
		o.Unit = d.Unit.String()
		o.Quantity = d.Quantity
		o.PublishedAt = ts.Time
		o.Approximate = ts.Approximate
	case errors.Is(err, timeago.ErrNoMatch):
		o.ErrorKind = db.ErrorKindNoMatch
	case errors.Is(err, timeago.ErrAmbiguous):
		o.ErrorKind = db.ErrorKindAmbiguous
	default:
		res.Error = err
	}
	res.Observation = o
	return res
}
