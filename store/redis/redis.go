// Package redis backs the cache with a Redis keyspace, letting several
// processes share one fetched copy of each report. Entries are written
// without expiry; clear the namespace manually if the cache must go.
package redis

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	st "github.com/openproduce/mmn/store"
)

var ErrNilClient = errors.New("redis store: nil client")

type Store struct {
	rdb         goredis.UniversalClient
	ns          string
	closeClient bool
}

var _ st.Store = (*Store)(nil)

type Config struct {
	Client      goredis.UniversalClient
	Namespace   string // key prefix; "" => "mmn"
	CloseClient bool   // set true only if this store exclusively owns the client
}

func New(cfg Config) (*Store, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	ns := cfg.Namespace
	if ns == "" {
		ns = "mmn"
	}
	return &Store{rdb: cfg.Client, ns: ns, closeClient: cfg.CloseClient}, nil
}

func (s *Store) key(k string) string { return s.ns + ":entry:" + k }

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil // miss
	}
	if err != nil {
		return nil, false, err // transport/server error
	}
	return b, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	// 0 expiry: historical reports never go stale
	return s.rdb.Set(ctx, s.key(key), value, 0).Err()
}

func (s *Store) Del(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.key(key)).Err()
}

// Close releases the underlying client only when this store owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (s *Store) Close(context.Context) error {
	if s.closeClient {
		if err := s.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
