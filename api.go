package mmn

import (
	"context"

	c "github.com/openproduce/mmn/codec"
	"github.com/openproduce/mmn/quota"
	st "github.com/openproduce/mmn/store"
)

// Source is the remote data source the client delegates to on a cache miss.
// marsapi.Client is the production implementation.
type Source interface {
	// Prices fetches the report rows matching a normalized query.
	Prices(ctx context.Context, q Query) (ResultSet, error)
	// Reports fetches the terminal-market listing.
	Reports(ctx context.Context) ([]Market, error)
}

// Client is the caller-facing surface: queries in, result sets or
// classified errors out. Every operation consults the cache first; the
// remote source is reached at most once per distinct query for the
// lifetime of the cache.
type Client interface {
	// Prices returns the price report for q, from cache when possible.
	// When the fetch succeeded but the entry could not be persisted, the
	// returned ResultSet is valid AND err is a *StorageError - callers
	// that only need data may use the result and treat the error as a
	// warning.
	Prices(ctx context.Context, q Query) (ResultSet, error)

	// Markets returns the terminal-market listing (cached after the
	// first call, like every other query).
	Markets(ctx context.Context) ([]Market, error)

	// SlugID resolves a proprietary market name to its MARS slug id.
	SlugID(ctx context.Context, marketName string) (string, error)

	// MarketName resolves a MARS slug id to its proprietary market name.
	MarketName(ctx context.Context, slugID string) (string, error)

	// Commodities lists the distinct commodities traded in a market,
	// derived from the latest full year of its data.
	Commodities(ctx context.Context, slugID string) ([]string, error)

	Close(context.Context) error
}

// Options tune the client. Store and Source are required; the rest have
// sensible defaults.
type Options struct {
	// Required
	Store  st.Store
	Source Source

	Codec      c.Codec[ResultSet] // nil => JSON
	Logger     Logger             // nil => NopLogger
	Hooks      Hooks              // nil => NopHooks
	Quota      quota.Counter      // nil => no request accounting
	DailyLimit uint64             // 0 => unlimited; requires Quota to be set
	Disabled   bool               // bypass the cache entirely (every call hits the source)
}

func New(opts Options) (Client, error) {
	return newClient(opts)
}
