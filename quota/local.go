package quota

import (
	"context"
	"sync"
	"time"
)

type localEntry struct {
	Count     uint64
	UpdatedAt time.Time
}

// Local keeps day counts in-process (default).
// Optional cleanup loop to prune long-inactive days.
type Local struct {
	mu     sync.RWMutex
	days   map[string]localEntry
	ticker *time.Ticker
	stopCh chan struct{}
	wg     sync.WaitGroup

	retention time.Duration
}

var _ Counter = (*Local)(nil)

func NewLocal(cleanupInterval, retention time.Duration) *Local {
	c := &Local{
		days:      make(map[string]localEntry),
		retention: retention,
	}
	if cleanupInterval > 0 && retention > 0 {
		c.ticker = time.NewTicker(cleanupInterval)
		c.stopCh = make(chan struct{})
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			for {
				select {
				case <-c.ticker.C:
					c.Cleanup(retention)
				case <-c.stopCh:
					return
				}
			}
		}()
	}
	return c
}

func (c *Local) Used(_ context.Context, day string) (uint64, error) {
	c.mu.RLock()
	e, ok := c.days[day]
	c.mu.RUnlock()
	if !ok {
		return 0, nil
	}
	return e.Count, nil
}

func (c *Local) Record(_ context.Context, day string) (uint64, error) {
	now := time.Now()
	c.mu.Lock()
	e := c.days[day]
	e.Count++
	e.UpdatedAt = now
	c.days[day] = e
	c.mu.Unlock()
	return e.Count, nil
}

func (c *Local) Cleanup(retention time.Duration) {
	if retention <= 0 {
		return
	}
	cutoff := time.Now().Add(-retention)

	c.mu.Lock()
	for day, e := range c.days {
		if !e.UpdatedAt.IsZero() && e.UpdatedAt.Before(cutoff) {
			delete(c.days, day)
		}
	}
	c.mu.Unlock()
}

func (c *Local) Close(context.Context) error {
	if c.stopCh != nil {
		close(c.stopCh)
		c.stopCh = nil
		if c.ticker != nil {
			c.ticker.Stop() // stop ticker before waiting
		}
		c.wg.Wait()
	}
	return nil
}
