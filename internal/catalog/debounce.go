package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/meur/unitvalues/internal/models"
)

// SearchFunc runs one query. Implementations should be fast and may check
// ctx to bail out early when superseded.
type SearchFunc func(ctx context.Context, q Query) []models.Unit

// DeliverFunc receives the result of the latest query. It runs with the
// debouncer's lock held and must not call Submit or Stop.
type DeliverFunc func(q Query, units []models.Unit)

// Debouncer collapses rapid successive queries into the most recent one.
// A new Submit cancels whatever is pending or running; only the latest
// query's result is ever delivered.
type Debouncer struct {
	delay   time.Duration
	search  SearchFunc
	deliver DeliverFunc

	mu     sync.Mutex
	seq    uint64
	timer  *time.Timer
	cancel context.CancelFunc
}

// NewDebouncer creates a debouncer that waits delay after the last Submit
func NewDebouncer(delay time.Duration, search SearchFunc, deliver DeliverFunc) *Debouncer {
	return &Debouncer{
		delay:   delay,
		search:  search,
		deliver: deliver,
	}
}

// Submit schedules q, superseding any earlier query
func (d *Debouncer) Submit(q Query) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.seq++
	seq := d.seq

	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.timer = time.AfterFunc(d.delay, func() {
		if ctx.Err() != nil {
			return
		}
		units := d.search(ctx, q)

		d.mu.Lock()
		defer d.mu.Unlock()
		if ctx.Err() != nil || seq != d.seq {
			return
		}
		d.deliver(q, units)
	})
}

// Stop cancels any pending or in-flight query
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.seq++
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

// CatalogSearch adapts a provider to a SearchFunc
func CatalogSearch(p Provider) SearchFunc {
	return func(ctx context.Context, q Query) []models.Unit {
		if ctx.Err() != nil {
			return nil
		}
		return p.Query(q)
	}
}
