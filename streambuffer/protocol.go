package streambuffer

// Verdict is the classification outcome of one access.
type Verdict int

// The two possible verdicts.
const (
	Miss Verdict = iota
	Hit
)

func (v Verdict) String() string {
	if v == Hit {
		return "Hit"
	}

	return "Miss"
}

// A PrefetchReq represents one line that the classifier asks the memory
// system to fetch speculatively. Addr is the line-aligned byte address.
type PrefetchReq struct {
	ID   string
	Line uint64
	Addr uint64
}

// A Result carries the verdict of one access and the prefetches that the
// access newly triggered, in issue order.
type Result struct {
	Verdict    Verdict
	Prefetches []PrefetchReq
}
