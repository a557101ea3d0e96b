// Package streambuffer provides a functional model of a stream buffer
// prefetcher. A fixed-size table of per-stream state machines is driven by a
// sequential feed of memory accesses; every access is classified as a hit or
// a miss and may trigger new prefetch requests.
package streambuffer

import (
	"github.com/rs/xid"

	"github.com/berkayinceisci/chipyard-stream-buffers/hooking"
)

// MaxAddr is the largest address the classifier accepts. Larger addresses
// are rejected as input errors so that line arithmetic cannot wrap.
const MaxAddr = uint64(1) << 62

// A Classifier wraps a stream buffer table and classifies an address stream
// into hit/miss verdicts and prefetch requests. It is exclusively owned by
// one sequential caller; Classify must not be called concurrently.
type Classifier struct {
	*hooking.HookableBase

	name         string
	cfg          Config
	log2LineSize int
	maxLine      uint64
	victimFinder VictimFinder

	entries []Entry
	clock   uint64
}

// Name returns the name of the classifier.
func (c *Classifier) Name() string {
	return c.name
}

// Config returns the configuration the classifier was built with.
func (c *Classifier) Config() Config {
	return c.cfg
}

// Entries returns a snapshot of the stream buffer table.
func (c *Classifier) Entries() []Entry {
	snapshot := make([]Entry, len(c.entries))
	copy(snapshot, c.entries)

	return snapshot
}

// Classify processes one demand access. It returns the hit/miss verdict and
// the prefetches the access newly triggered, in issue order. A malformed
// address is rejected without modifying the table.
func (c *Classifier) Classify(addr uint64, isWrite bool) (Result, error) {
	if addr > MaxAddr {
		return Result{}, &InputError{Addr: addr, Reason: "address out of range"}
	}

	line := addr >> c.log2LineSize
	info := AccessInfo{Addr: addr, Line: line, IsWrite: isWrite}

	c.clock++

	if res, ok := c.lookupHit(line, info); ok {
		return res, nil
	}

	if res, ok := c.continueTraining(line, info); ok {
		return res, nil
	}

	return c.allocate(line, info), nil
}

// Flush resets every entry to invalid. A flushed table behaves exactly like
// a freshly built one.
func (c *Classifier) Flush() {
	for i := range c.entries {
		c.entries[i] = Entry{ID: i}
	}

	c.clock = 0

	c.InvokeHook(hooking.HookCtx{Domain: c, Pos: HookPosFlush})
}

// lookupHit implements the buffer hit test. A confirmed entry hits on its
// natural continuation or anywhere in its prefetched window, and extends the
// window frontier. A training entry hits only on a repeat of its current
// line, which the demand miss already fetched.
func (c *Classifier) lookupHit(line uint64, info AccessInfo) (Result, bool) {
	for i := range c.entries {
		e := &c.entries[i]

		switch e.State {
		case EntryConfirmed:
			if line == nextLine(e.LastLine, e.Stride) || e.coversLine(line) {
				e.LastLine = line
				e.RecencyStamp = c.clock

				prefetches := c.extendWindow(e, line)

				c.InvokeHook(hooking.HookCtx{
					Domain: c, Pos: HookPosHit, Item: info})

				return Result{Verdict: Hit, Prefetches: prefetches}, true
			}
		case EntryTraining:
			if line == e.LastLine {
				e.RecencyStamp = c.clock

				c.InvokeHook(hooking.HookCtx{
					Domain: c, Pos: HookPosHit, Item: info})

				return Result{Verdict: Hit}, true
			}
		}
	}

	return Result{}, false
}

// continueTraining implements the training continuation test. Training
// accesses are always demand misses.
func (c *Classifier) continueTraining(line uint64, info AccessInfo) (Result, bool) {
	for i := range c.entries {
		e := &c.entries[i]
		if e.State != EntryTraining {
			continue
		}

		delta := int64(line) - int64(e.LastLine)
		if !matchesStream(e, delta) {
			continue
		}

		if e.Stride == 0 {
			e.Stride = delta
		}

		e.LastLine = line
		e.HighWaterLine = line
		e.TrainCount++
		e.RecencyStamp = c.clock

		var prefetches []PrefetchReq
		if e.TrainCount >= c.cfg.TrainThreshold {
			e.State = EntryConfirmed

			c.InvokeHook(hooking.HookCtx{
				Domain: c, Pos: HookPosConfirm, Item: *e})

			prefetches = c.extendWindow(e, line)
		}

		c.InvokeHook(hooking.HookCtx{Domain: c, Pos: HookPosMiss, Item: info})

		return Result{Verdict: Miss, Prefetches: prefetches}, true
	}

	return Result{}, false
}

// allocate resets the victim entry to track a fresh stream starting at line.
func (c *Classifier) allocate(line uint64, info AccessInfo) Result {
	victim := c.victimFinder.FindVictim(c.entries)
	e := &c.entries[victim]

	if e.State != EntryInvalid {
		c.InvokeHook(hooking.HookCtx{Domain: c, Pos: HookPosEvict, Item: *e})
	}

	*e = Entry{
		ID:            victim,
		State:         EntryTraining,
		BaseLine:      line,
		LastLine:      line,
		HighWaterLine: line,
		RecencyStamp:  c.clock,
	}

	if !c.cfg.DetectStride {
		e.Stride = 1
	}

	c.InvokeHook(hooking.HookCtx{Domain: c, Pos: HookPosAllocate, Item: *e})
	c.InvokeHook(hooking.HookCtx{Domain: c, Pos: HookPosMiss, Item: info})

	return Result{Verdict: Miss}
}

// extendWindow advances the prefetch frontier of a confirmed entry until it
// covers prefetchAhead lines beyond the given line, issuing one prefetch per
// advanced line. Lines already inside the window are never re-issued.
func (c *Classifier) extendWindow(e *Entry, line uint64) []PrefetchReq {
	var reqs []PrefetchReq

	// The demand access covers its own line; only lines beyond it are
	// worth requesting.
	if e.Stride > 0 && e.HighWaterLine < line {
		e.HighWaterLine = line
	}
	if e.Stride < 0 && e.HighWaterLine > line {
		e.HighWaterLine = line
	}

	target := int64(line) + int64(c.cfg.PrefetchAhead)*e.Stride

	for {
		if e.Stride > 0 && int64(e.HighWaterLine) >= target {
			break
		}
		if e.Stride < 0 && int64(e.HighWaterLine) <= target {
			break
		}
		if e.Stride == 0 {
			break
		}

		next := int64(e.HighWaterLine) + e.Stride
		if next < 0 || uint64(next) > c.maxLine {
			// The stream ran off the edge of the address space.
			break
		}

		e.HighWaterLine = uint64(next)

		req := PrefetchReq{
			ID:   xid.New().String(),
			Line: e.HighWaterLine,
			Addr: e.HighWaterLine << c.log2LineSize,
		}
		reqs = append(reqs, req)

		c.InvokeHook(hooking.HookCtx{Domain: c, Pos: HookPosPrefetch, Item: req})
	}

	return reqs
}

// matchesStream reports whether the observed line delta continues the stream
// that a training entry tracks. With no candidate stride yet, any nonzero
// delta is provisionally accepted.
func matchesStream(e *Entry, delta int64) bool {
	if delta == 0 {
		return false
	}

	if e.Stride == 0 {
		return true
	}

	return delta == e.Stride
}

func nextLine(line uint64, stride int64) uint64 {
	next := int64(line) + stride
	if next < 0 {
		return line
	}

	return uint64(next)
}
