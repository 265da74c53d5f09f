package mmn

import "time"

// Hooks are lightweight callbacks for high-signal cache events.
// Implementations MUST be cheap and non-blocking; the client calls them
// inline on the fetch path. Wrap with hooks/async to move work off it.
type Hooks interface {
	// A stored entry could not be decoded and was dropped before re-fetch.
	// reason is one of "envelope", "payload", "read".
	SelfHeal(key, reason string)

	// Data was fetched but could not be persisted. The caller still got
	// the result.
	WriteFailed(key string, err error)

	// A cache miss reached the remote data source.
	RemoteFetch(key string, d time.Duration)

	// The configured daily limit blocked a remote call.
	QuotaExhausted(day string, used uint64)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) SelfHeal(string, string)           {}
func (NopHooks) WriteFailed(string, error)         {}
func (NopHooks) RemoteFetch(string, time.Duration) {}
func (NopHooks) QuotaExhausted(string, uint64)     {}
