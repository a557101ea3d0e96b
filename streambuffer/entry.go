package streambuffer

// EntryState is the state of the per-stream finite state machine.
type EntryState int

// The states that a stream buffer entry can be in.
const (
	// EntryInvalid marks an entry that tracks no stream.
	EntryInvalid EntryState = iota

	// EntryTraining marks an entry that tracks a provisional stream that has
	// not yet earned enough confidence to prefetch.
	EntryTraining

	// EntryConfirmed marks an entry that tracks a trusted stream and actively
	// prefetches ahead of it.
	EntryConfirmed
)

func (s EntryState) String() string {
	switch s {
	case EntryInvalid:
		return "Invalid"
	case EntryTraining:
		return "Training"
	case EntryConfirmed:
		return "Confirmed"
	}

	return "Unknown"
}

// An Entry is the information that a stream buffer table associates with one
// tracked stream. Line fields are in units of cache lines, not bytes.
type Entry struct {
	ID    int
	State EntryState

	// BaseLine is the line that started the stream.
	BaseLine uint64

	// Stride is the line delta of the stream. While the entry is training,
	// 0 means that no candidate stride has been observed yet. A zero delta is
	// never a continuation, so 0 is a safe sentinel.
	Stride int64

	// TrainCount is the number of consecutive confirming observations.
	TrainCount int

	// LastLine is the most recently observed line of the stream.
	LastLine uint64

	// HighWaterLine is the furthest line for which a prefetch has been
	// issued. Lines between BaseLine and HighWaterLine are considered
	// covered and are never re-requested.
	HighWaterLine uint64

	// RecencyStamp orders entries for eviction. It is taken from the
	// classifier's logical clock on every touch.
	RecencyStamp uint64
}

// coversLine returns true if the line falls in the already-prefetched region
// of the entry, normalized for stride direction.
func (e *Entry) coversLine(line uint64) bool {
	if e.Stride >= 0 {
		return line >= e.BaseLine && line <= e.HighWaterLine
	}

	return line <= e.BaseLine && line >= e.HighWaterLine
}
