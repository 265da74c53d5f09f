// Package store defines the persistence abstraction behind the mmn cache.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the same []byte that was previously passed to Set for a key (no prepended
// metadata, no re-encoding, no mutation). Corruption detection is not the
// store's job; the client validates entries with its own envelope framing.
//
// Entries are immutable and never expire, so stores need no TTL support.
// Set must be atomic with respect to partial writes: after a failed Set the
// key must not appear to exist, and a concurrent reader must never observe
// a half-written value.
package store

import "context"

// Store is a minimal durable byte store. Must be safe for concurrent use.
type Store interface {
	// Exists reports whether the key holds an entry. "Not found" is
	// (false, nil); an error is returned only on I/O failure.
	Exists(ctx context.Context, key string) (bool, error)

	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key, atomically replacing any previous entry.
	Set(ctx context.Context, key string, value []byte) error

	// Del removes a key (best-effort; absent keys are not an error).
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}
