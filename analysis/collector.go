// Package analysis provides hooks that collect aggregate statistics from a
// running classifier.
package analysis

import (
	"github.com/berkayinceisci/chipyard-stream-buffers/hooking"
	"github.com/berkayinceisci/chipyard-stream-buffers/streambuffer"
)

// Stats is a plain snapshot of the counters a Collector accumulates.
type Stats struct {
	Accesses      uint64
	Hits          uint64
	Misses        uint64
	ReadHits      uint64
	WriteHits     uint64
	Allocations   uint64
	Confirmations uint64
	Evictions     uint64
	Prefetches    uint64
	Flushes       uint64
}

// HitRate returns the fraction of accesses that hit, or 0 for an empty run.
func (s Stats) HitRate() float64 {
	if s.Accesses == 0 {
		return 0
	}

	return float64(s.Hits) / float64(s.Accesses)
}

// A Collector is a hook that counts classifier actions. Attach it with
// AcceptHook; it can be attached to several classifiers at once, in which
// case it accumulates across all of them.
type Collector struct {
	stats Stats
}

// NewCollector creates a new Collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Func counts one hook invocation.
func (c *Collector) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case streambuffer.HookPosHit:
		c.stats.Accesses++
		c.stats.Hits++
		c.countRW(ctx.Item.(streambuffer.AccessInfo))
	case streambuffer.HookPosMiss:
		c.stats.Accesses++
		c.stats.Misses++
	case streambuffer.HookPosAllocate:
		c.stats.Allocations++
	case streambuffer.HookPosConfirm:
		c.stats.Confirmations++
	case streambuffer.HookPosEvict:
		c.stats.Evictions++
	case streambuffer.HookPosPrefetch:
		c.stats.Prefetches++
	case streambuffer.HookPosFlush:
		c.stats.Flushes++
	}
}

func (c *Collector) countRW(info streambuffer.AccessInfo) {
	if info.IsWrite {
		c.stats.WriteHits++
	} else {
		c.stats.ReadHits++
	}
}

// Snapshot returns the counters accumulated so far.
func (c *Collector) Snapshot() Stats {
	return c.stats
}

// Reset clears all counters.
func (c *Collector) Reset() {
	c.stats = Stats{}
}
