package business

import (
	"context"
	"time"

	"gomarketplace_ingest/internal/catalog/models"
	"gomarketplace_ingest/internal/catalog/storage"
	"gomarketplace_ingest/metrics"
	"gomarketplace_ingest/pkg/logger"
)

type State int

const (
	StateInit State = iota
	StateRunning
	StateExhausted
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateRunning:
		return "RUNNING"
	case StateExhausted:
		return "EXHAUSTED"
	case StateStopped:
		return "STOPPED"
	}
	return "UNKNOWN"
}

type CatalogSource interface {
	ListProducts(ctx context.Context, cursor models.PageCursor) models.PageResult
}

type ProductWriter interface {
	Write(ctx context.Context, product models.RawProduct) error
}

// IngestLoop проходит каталог страница за страницей, строго последовательно.
// Чекпоинт сохраняется только после того, как запись товара завершилась.
type IngestLoop struct {
	source      CatalogSource
	writer      ProductWriter
	checkpoints storage.CheckpointStore
	retryDelay  time.Duration
	log         logger.Logger
	metrics     metrics.IngestMetrics
	state       State
}

func NewIngestLoop(source CatalogSource, writer ProductWriter, checkpoints storage.CheckpointStore, retryDelay time.Duration, log logger.Logger) *IngestLoop {
	return &IngestLoop{
		source:      source,
		writer:      writer,
		checkpoints: checkpoints,
		retryDelay:  retryDelay,
		log:         log,
		state:       StateInit,
	}
}

func (l *IngestLoop) State() State {
	return l.state
}

func (l *IngestLoop) Summary() metrics.IngestSummary {
	return l.metrics.Snapshot()
}

// Run blocks until the catalog is exhausted or ctx is cancelled. Cancellation is observed between pages
// and during retry waits; a page that is being written is always finished first.
func (l *IngestLoop) Run(ctx context.Context) State {
	l.state = StateInit

	var checkpoint *models.CheckpointRecord
	loaded := l.retry(ctx, "load checkpoint", func(ctx context.Context) error {
		var err error
		checkpoint, err = l.checkpoints.LoadActive(ctx)
		return err
	})
	if !loaded {
		return l.stop()
	}

	var (
		cursor      models.PageCursor
		resumeAfter int64
	)
	if checkpoint != nil {
		cursor = checkpoint.Cursor
		resumeAfter = checkpoint.LastProcessedID
		l.log.Log("Resuming run %s from cursor %s after product %d",
			checkpoint.RunID, models.CursorString(cursor), resumeAfter)
	} else {
		l.log.Log("No active checkpoint, starting from catalog head")
	}

	l.state = StateRunning
	for {
		if ctx.Err() != nil {
			return l.stop()
		}

		page := l.source.ListProducts(ctx, cursor)
		metrics.RecordPage(page.Outcome.String())

		switch page.Outcome {
		case models.OutcomeTransportError:
			if ctx.Err() != nil {
				return l.stop()
			}
			l.metrics.FetchErrors.Add(1)
			l.log.Warn("Page fetch failed at cursor %s: %v; retrying in %v",
				models.CursorString(cursor), page.Err, l.retryDelay)
			if !l.wait(ctx) {
				return l.stop()
			}
			continue
		case models.OutcomeEmpty:
			l.log.Log("No more products to process")
			return l.exhaust(ctx)
		}

		l.metrics.PagesFetched.Add(1)
		items := skipThrough(page.Items, resumeAfter)

		lastSaved, err := l.processPage(ctx, cursor, page.Next, items)
		if err != nil {
			if lastSaved != 0 {
				resumeAfter = lastSaved
			}
			l.log.Error("Checkpoint failed at cursor %s: %v; retrying page in %v",
				models.CursorString(cursor), err, l.retryDelay)
			if !l.wait(ctx) {
				return l.stop()
			}
			continue
		}

		resumeAfter = 0
		if page.Next == nil {
			l.log.Log("Last page reached without a scroll token")
			return l.exhaust(ctx)
		}
		cursor = page.Next
	}
}

// processPage writes items in order and checkpoints each one. The last item of a page carries the next
// cursor; earlier items keep the cursor of this page so a restart replays the rest of it.
func (l *IngestLoop) processPage(ctx context.Context, pageCursor, next models.PageCursor, items []models.RawProduct) (int64, error) {
	// запись товара и чекпоинт не прерываются остановкой
	writeCtx := context.WithoutCancel(ctx)

	var lastSaved int64
	for i, item := range items {
		if err := l.writer.Write(writeCtx, item); err != nil {
			l.metrics.ProductsFailed.Add(1)
			metrics.RecordProduct("failed")
			l.log.Error("Failed to save product %d: %v", item.ID, err)
		} else {
			l.metrics.ProductsWritten.Add(1)
			metrics.RecordProduct("written")
		}

		saveCursor := pageCursor
		if i == len(items)-1 && next != nil {
			saveCursor = next
		}
		if err := l.checkpoints.Save(writeCtx, saveCursor, item.ID); err != nil {
			return lastSaved, err
		}
		lastSaved = item.ID
		metrics.RecordCheckpoint(item.ID)
		l.log.Debug("Processed product %d", item.ID)
	}
	return lastSaved, nil
}

func (l *IngestLoop) exhaust(ctx context.Context) State {
	done := l.retry(ctx, "mark checkpoint done", func(ctx context.Context) error {
		return l.checkpoints.MarkDone(ctx)
	})
	if !done {
		return l.stop()
	}
	l.state = StateExhausted
	s := l.metrics.Snapshot()
	l.log.Log("Catalog exhausted: pages=%d written=%d failed=%d fetch_errors=%d",
		s.PagesFetched, s.ProductsWritten, s.ProductsFailed, s.FetchErrors)
	return l.state
}

func (l *IngestLoop) stop() State {
	l.state = StateStopped
	l.log.Log("Ingestion stopped")
	return l.state
}

// retry repeats fn with the fixed delay until it succeeds. Returns false if ctx ends first.
func (l *IngestLoop) retry(ctx context.Context, what string, fn func(ctx context.Context) error) bool {
	for {
		if ctx.Err() != nil {
			return false
		}
		err := fn(ctx)
		if err == nil {
			return true
		}
		l.log.Error("Failed to %s: %v; retrying in %v", what, err, l.retryDelay)
		if !l.wait(ctx) {
			return false
		}
	}
}

func (l *IngestLoop) wait(ctx context.Context) bool {
	timer := time.NewTimer(l.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// skipThrough drops items up to and including lastID. If lastID is not on the page nothing is dropped.
func skipThrough(items []models.RawProduct, lastID int64) []models.RawProduct {
	if lastID == 0 {
		return items
	}
	for i, item := range items {
		if item.ID == lastID {
			return items[i+1:]
		}
	}
	return items
}
