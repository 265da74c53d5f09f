package mmn

import (
	"errors"
	"fmt"
)

// ErrCorruptEntry marks a cache entry whose envelope or payload could not be
// decoded. It is recovered automatically by re-fetching; callers only see it
// through Hooks and logs.
var ErrCorruptEntry = errors.New("mmn: corrupt cache entry")

// ConfigError reports a fatal configuration problem (missing credential,
// unusable options). It is surfaced at construction time, before any fetch.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "mmn: configuration error: " + e.Reason
}

// StorageError reports a cache I/O failure. Read-side failures are degraded
// to a miss by the client; a write-side failure is returned to the caller
// together with the fetched data (the result is valid, it just was not
// durably cached).
type StorageError struct {
	Op  string // "read", "write", "encode", "delete"
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("mmn: cache %s failed for %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// RequestKind classifies a failed remote request so callers can tell
// "fix credentials" from "retry later" from "retry now".
type RequestKind string

const (
	KindAuth       RequestKind = "auth"        // credential rejected
	KindQuota      RequestKind = "quota"       // daily request quota exhausted
	KindTransient  RequestKind = "transient"   // network failure or 5xx
	KindMalformed  RequestKind = "malformed"   // undecodable server response
	KindBadRequest RequestKind = "bad_request" // other 4xx
)

// RequestError reports a failed call to the remote data source. No cache
// entry is ever written on the path that produces one.
type RequestError struct {
	Kind   RequestKind
	Status int // HTTP status, 0 when the request never completed
	URL    string
	Err    error
}

func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("mmn: remote request failed (%s, status %d): %v", e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("mmn: remote request failed (%s): %v", e.Kind, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// Temporary reports whether retrying the same request soon is reasonable.
func (e *RequestError) Temporary() bool { return e.Kind == KindTransient }

func requestKindIs(err error, k RequestKind) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Kind == k
}

// IsAuth reports whether err is a credential rejection.
func IsAuth(err error) bool { return requestKindIs(err, KindAuth) }

// IsQuota reports whether err is a quota exhaustion, either reported by the
// upstream API or enforced locally by the configured daily limit.
func IsQuota(err error) bool { return requestKindIs(err, KindQuota) }

// IsTransient reports whether err is worth retrying now.
func IsTransient(err error) bool { return requestKindIs(err, KindTransient) }
