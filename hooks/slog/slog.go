// Package sloghook bridges mmn.Hooks onto a *slog.Logger.
//
// Self-heal events can be sampled to avoid floods when a whole cache
// folder has been mangled; the rest are rare enough to log every time.
package sloghook

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/openproduce/mmn"
)

type Options struct {
	// Sampling for self-heal events; 0/1 = log all.
	SelfHealEvery uint64
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	selfHealCtr atomic.Uint64
}

var _ mmn.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) SelfHeal(key, reason string) {
	if h.l == nil || !sample(h.opts.SelfHealEvery, &h.selfHealCtr) {
		return
	}
	h.l.Debug("mmn.self_heal",
		"key", key,
		"reason", reason)
}

func (h *Hooks) WriteFailed(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("mmn.write_failed",
		"key", key,
		"err", err)
}

func (h *Hooks) RemoteFetch(key string, d time.Duration) {
	if h.l == nil {
		return
	}
	h.l.Debug("mmn.remote_fetch",
		"key", key,
		"duration", d)
}

func (h *Hooks) QuotaExhausted(day string, used uint64) {
	if h.l == nil {
		return
	}
	h.l.Warn("mmn.quota_exhausted",
		"day", day,
		"used", used)
}
