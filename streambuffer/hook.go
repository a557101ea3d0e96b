package streambuffer

import "github.com/berkayinceisci/chipyard-stream-buffers/hooking"

// HookPosHit is triggered when an access hits the stream buffer table.
// The hook item is an AccessInfo.
var HookPosHit = &hooking.HookPos{Name: "Hit"}

// HookPosMiss is triggered when an access misses the stream buffer table.
// The hook item is an AccessInfo.
var HookPosMiss = &hooking.HookPos{Name: "Miss"}

// HookPosAllocate is triggered when a miss allocates a fresh training entry.
// The hook item is the Entry after allocation.
var HookPosAllocate = &hooking.HookPos{Name: "Allocate"}

// HookPosConfirm is triggered when a training entry reaches the training
// threshold. The hook item is the Entry after the transition.
var HookPosConfirm = &hooking.HookPos{Name: "Confirm"}

// HookPosEvict is triggered when a valid entry is reset to make room for a
// new stream. The hook item is the Entry before the reset.
var HookPosEvict = &hooking.HookPos{Name: "Evict"}

// HookPosPrefetch is triggered once per issued prefetch. The hook item is
// the PrefetchReq.
var HookPosPrefetch = &hooking.HookPos{Name: "Prefetch"}

// HookPosFlush is triggered when the whole table is flushed. The hook item
// is nil.
var HookPosFlush = &hooking.HookPos{Name: "Flush"}

// AccessInfo describes one classified access to hooks.
type AccessInfo struct {
	Addr    uint64
	Line    uint64
	IsWrite bool
}
