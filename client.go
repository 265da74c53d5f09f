package mmn

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	c "github.com/openproduce/mmn/codec"
	"github.com/openproduce/mmn/internal/wire"
	"github.com/openproduce/mmn/quota"
	st "github.com/openproduce/mmn/store"
)

type client struct {
	store      st.Store
	source     Source
	codec      c.Codec[ResultSet]
	marketsCod c.Codec[[]Market]
	log        Logger
	hooks      Hooks
	quota      quota.Counter
	dailyLimit uint64
	disabled   bool

	// per-process memo of the market listing; the durable copy lives in
	// the store like any other entry
	mktMu   sync.Mutex
	markets []Market
}

func newClient(opts Options) (*client, error) {
	if opts.Store == nil {
		return nil, &ConfigError{Reason: "store is required"}
	}
	if opts.Source == nil {
		return nil, &ConfigError{Reason: "source is required"}
	}
	if opts.DailyLimit > 0 && opts.Quota == nil {
		return nil, &ConfigError{Reason: "daily limit set without a quota counter"}
	}

	cl := &client{
		store:      opts.Store,
		source:     opts.Source,
		marketsCod: c.JSON[[]Market]{},
		quota:      opts.Quota,
		dailyLimit: opts.DailyLimit,
		disabled:   opts.Disabled,
	}

	// defaults
	cl.codec = coalesce[c.Codec[ResultSet]](opts.Codec, c.JSON[ResultSet]{})
	cl.log = coalesce[Logger](opts.Logger, NopLogger{})
	cl.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})

	return cl, nil
}

func (cl *client) Close(ctx context.Context) error {
	// Close the quota counter first (best effort)
	if cl.quota != nil {
		_ = cl.quota.Close(ctx)
	}
	if cl.store != nil {
		return cl.store.Close(ctx)
	}
	return nil
}

func (cl *client) Prices(ctx context.Context, q Query) (ResultSet, error) {
	nq, err := cl.resolve(ctx, q)
	if err != nil {
		return nil, err
	}
	key := nq.key()

	if !cl.disabled {
		if rs, ok := lookup(ctx, cl, key, cl.codec); ok {
			return rs, nil
		}
	}

	// miss (or corrupt-entry fallthrough): go remote
	if err := cl.checkQuota(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	rs, err := cl.source.Prices(ctx, nq)
	cl.recordQuota(ctx) // a failed attempt spent upstream budget too
	if err != nil {
		return nil, err // failed fetches never poison the cache
	}
	cl.hooks.RemoteFetch(key, time.Since(start))

	if cl.disabled {
		return rs, nil
	}
	if serr := persist(ctx, cl, key, rs, cl.codec); serr != nil {
		// data fetched but not durably cached; the caller still gets it
		cl.log.Warn("fetched report was not cached", Fields{"key": key, "err": serr})
		cl.hooks.WriteFailed(key, serr)
		return rs, serr
	}
	return rs, nil
}

func (cl *client) Markets(ctx context.Context) ([]Market, error) {
	cl.mktMu.Lock()
	defer cl.mktMu.Unlock()
	if cl.markets != nil {
		return cl.markets, nil
	}

	key := marketsKey()
	if !cl.disabled {
		if ms, ok := lookup(ctx, cl, key, cl.marketsCod); ok {
			cl.markets = ms
			return ms, nil
		}
	}

	if err := cl.checkQuota(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	ms, err := cl.source.Reports(ctx)
	cl.recordQuota(ctx)
	if err != nil {
		return nil, err
	}
	cl.hooks.RemoteFetch(key, time.Since(start))

	cl.markets = ms
	if cl.disabled {
		return ms, nil
	}
	if serr := persist(ctx, cl, key, ms, cl.marketsCod); serr != nil {
		cl.log.Warn("market listing was not cached", Fields{"key": key, "err": serr})
		cl.hooks.WriteFailed(key, serr)
		return ms, serr
	}
	return ms, nil
}

func (cl *client) SlugID(ctx context.Context, marketName string) (string, error) {
	// a write-side *StorageError still delivered a listing; an empty
	// listing with no error falls through to the not-found error below
	ms, err := cl.Markets(ctx)
	if err != nil && ms == nil {
		return "", err
	}
	for _, m := range ms {
		if strings.EqualFold(m.Name, marketName) {
			return m.SlugID, nil
		}
	}
	return "", fmt.Errorf("mmn: unknown market name %q", marketName)
}

func (cl *client) MarketName(ctx context.Context, slugID string) (string, error) {
	ms, err := cl.Markets(ctx)
	if err != nil && ms == nil {
		return "", err
	}
	for _, m := range ms {
		if m.SlugID == slugID {
			return m.Name, nil
		}
	}
	return "", fmt.Errorf("mmn: unknown slug id %q", slugID)
}

// Commodities assumes every commodity ever traded in a market shows up
// within a year of data and uses the latest full year.
func (cl *client) Commodities(ctx context.Context, slugID string) ([]string, error) {
	year := time.Now().UTC().Year() - 1
	rs, err := cl.Prices(ctx, Query{SlugID: slugID, StartYear: year})
	if rs == nil {
		return nil, err
	}
	// a write-side *StorageError still delivered data; pass the warning on
	return rs.Commodities(), err
}

// resolve turns MarketName into SlugID (when needed) and normalizes the
// query so canonicalization is independent of how the caller spelled it.
func (cl *client) resolve(ctx context.Context, q Query) (Query, error) {
	if q.SlugID == "" && q.MarketName != "" {
		slug, err := cl.SlugID(ctx, q.MarketName)
		if err != nil {
			return Query{}, err
		}
		q.SlugID = slug
	}
	return q.normalized()
}

// lookup is the hit path: exists, read, unwrap envelope, decode payload.
// Read-side storage errors degrade to a miss; undecodable entries are
// deleted so the re-fetch overwrites them with a valid copy.
func lookup[V any](ctx context.Context, cl *client, key string, cod c.Codec[V]) (V, bool) {
	var zero V
	ok, err := cl.store.Exists(ctx, key)
	if err != nil {
		cl.log.Warn("cache existence check failed; treating as miss", Fields{"key": key, "err": err})
		cl.hooks.SelfHeal(key, "read")
		return zero, false
	}
	if !ok {
		return zero, false
	}

	raw, ok, err := cl.store.Get(ctx, key)
	if err != nil || !ok {
		cl.log.Warn("cache read failed; treating as miss", Fields{"key": key, "err": err})
		cl.hooks.SelfHeal(key, "read")
		return zero, false
	}

	env, err := wire.Decode(raw)
	if err != nil {
		cl.log.Debug("corrupt envelope; dropping entry", Fields{"key": key, "err": fmt.Errorf("%w: %v", ErrCorruptEntry, err)})
		cl.hooks.SelfHeal(key, "envelope")
		_ = cl.store.Del(ctx, key) // self-heal: re-fetch overwrites
		return zero, false
	}
	v, err := cod.Decode(env.Payload)
	if err != nil {
		cl.log.Debug("corrupt payload; dropping entry", Fields{"key": key, "err": fmt.Errorf("%w: %v", ErrCorruptEntry, err)})
		cl.hooks.SelfHeal(key, "payload")
		_ = cl.store.Del(ctx, key)
		return zero, false
	}
	return v, true
}

func persist[V any](ctx context.Context, cl *client, key string, v V, cod c.Codec[V]) *StorageError {
	payload, err := cod.Encode(v)
	if err != nil {
		return &StorageError{Op: "encode", Key: key, Err: err}
	}
	if err := cl.store.Set(ctx, key, wire.Encode(time.Now(), payload)); err != nil {
		return &StorageError{Op: "write", Key: key, Err: err}
	}
	return nil
}

func (cl *client) checkQuota(ctx context.Context) error {
	if cl.quota == nil || cl.dailyLimit == 0 {
		return nil
	}
	day := quota.Day(time.Now())
	used, err := cl.quota.Used(ctx, day)
	if err != nil {
		// accounting trouble never blocks a fetch
		cl.log.Warn("quota read failed", Fields{"day": day, "err": err})
		return nil
	}
	if used >= cl.dailyLimit {
		cl.hooks.QuotaExhausted(day, used)
		return &RequestError{
			Kind: KindQuota,
			Err:  fmt.Errorf("daily limit of %d requests reached (%d used)", cl.dailyLimit, used),
		}
	}
	return nil
}

func (cl *client) recordQuota(ctx context.Context) {
	if cl.quota == nil {
		return
	}
	day := quota.Day(time.Now())
	if _, err := cl.quota.Record(ctx, day); err != nil {
		cl.log.Warn("quota record failed", Fields{"day": day, "err": err})
	}
}
