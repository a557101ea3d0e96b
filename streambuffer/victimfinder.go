package streambuffer

// A VictimFinder decides which entry should be evicted when a new stream
// needs to be allocated.
type VictimFinder interface {
	FindVictim(entries []Entry) int
}

// LRUVictimFinder evicts the least recently used entry.
type LRUVictimFinder struct {
}

// NewLRUVictimFinder returns a newly constructed lru evictor.
func NewLRUVictimFinder() *LRUVictimFinder {
	f := new(LRUVictimFinder)
	return f
}

// FindVictim returns the index of the entry with the lowest recency stamp.
// Invalid entries are preferred. Ties go to the lowest index.
func (f *LRUVictimFinder) FindVictim(entries []Entry) int {
	// First try an invalid entry
	for i := range entries {
		if entries[i].State == EntryInvalid {
			return i
		}
	}

	victim := 0
	for i := 1; i < len(entries); i++ {
		if entries[i].RecencyStamp < entries[victim].RecencyStamp {
			victim = i
		}
	}

	return victim
}
