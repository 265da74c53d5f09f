// Package ristretto backs the cache with dgraph-io/ristretto. Ephemeral:
// entries vanish on process exit or under memory pressure, which is fine
// for tests and short-lived batch runs, not for quota preservation.
package ristretto

import (
	"context"
	"errors"

	rc "github.com/dgraph-io/ristretto"

	st "github.com/openproduce/mmn/store"
)

type Store struct {
	c *rc.Cache
}

var _ st.Store = (*Store)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
}

func New(cfg Config) (*Store, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Store{c: c}, nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, ok, err := s.Get(ctx, key)
	return ok, err
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	b, _ := v.([]byte)
	if b == nil {
		// drop unexpected entry shape
		s.c.Del(key)
		return nil, false, nil
	}
	return b, true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte) error {
	// cost = payload size; admission may still reject under pressure,
	// which the client treats as an ordinary miss next time around
	s.c.Set(key, value, int64(len(value)))
	s.c.Wait()
	return nil
}

func (s *Store) Del(_ context.Context, key string) error {
	s.c.Del(key)
	return nil
}

func (s *Store) Close(context.Context) error {
	s.c.Close()
	return nil
}

// Metrics exposes ristretto metrics when enabled in Config.
func (s *Store) Metrics() *rc.Metrics { return s.c.Metrics }
