// Package asynchook wraps another mmn.Hooks so callbacks run off the
// fetch path: events go into a bounded queue and are dropped when it is
// full rather than ever blocking a fetch.
package asynchook

import (
	"sync"
	"time"

	"github.com/openproduce/mmn"
)

type Hooks struct {
	inner mmn.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ mmn.Hooks = (*Hooks)(nil)

func New(inner mmn.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) SelfHeal(k, r string)            { h.try(func() { h.inner.SelfHeal(k, r) }) }
func (h *Hooks) WriteFailed(k string, err error) { h.try(func() { h.inner.WriteFailed(k, err) }) }
func (h *Hooks) RemoteFetch(k string, d time.Duration) {
	h.try(func() { h.inner.RemoteFetch(k, d) })
}
func (h *Hooks) QuotaExhausted(day string, used uint64) {
	h.try(func() { h.inner.QuotaExhausted(day, used) })
}
