// Package mmn is a client for the USDA MARS / Market News (MMN) produce-price
// API with a transparent, never-expiring local cache. Historical price reports
// are immutable upstream, so once a query's result has been fetched and
// persisted, every later equivalent query is served from local storage without
// any network activity or daily-quota consumption.
//
// Components:
//   - Store: durable byte store keyed by canonical query digests
//     (filesystem by default; Ristretto, BigCache and Redis backends are
//     also available).
//   - Codec[V]: (de)serializes the result payload <-> []byte.
//   - Source: the remote data source (marsapi.Client in production, a fake
//     in tests).
//   - quota.Counter: optional daily request accounting, local or Redis.
//
// Keys: a Query is normalized (market names resolved to slug ids, implicit
// defaults materialized), serialized into a versioned canonical string, and
// reduced to a SHA-256 hex digest. Equivalent queries always map to the same
// key across processes; distinct queries never collide.
//
// Fetch pattern:
//
//	src, _ := marsapi.New(marsapi.Config{APIKey: key})
//	st, _ := fs.New(dir)
//	cli, _ := mmn.New(mmn.Options{Store: st, Source: src})
//	rs, err := cli.Prices(ctx, mmn.Query{
//	    Commodity: "Tomatoes", SlugID: "1058", StartYear: 2020,
//	})
package mmn
