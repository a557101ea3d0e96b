package streambuffer

import (
	"math/bits"

	"github.com/berkayinceisci/chipyard-stream-buffers/hooking"
)

// Config holds the parameters of a stream buffer prefetcher. It is fixed at
// construction time.
type Config struct {
	NumEntries     int
	PrefetchAhead  int
	DetectStride   bool
	TrainThreshold int
	LineSize       uint64
}

// Builder can build classifiers.
type Builder struct {
	numEntries     int
	prefetchAhead  int
	detectStride   bool
	trainThreshold int
	lineSize       uint64
	victimFinder   VictimFinder
}

// MakeBuilder creates a new builder with the default configuration: 4
// entries, 2 lines of prefetch ahead, training threshold 2, 64-byte lines,
// stride detection off.
func MakeBuilder() Builder {
	return Builder{
		numEntries:     4,
		prefetchAhead:  2,
		trainThreshold: 2,
		lineSize:       64,
	}
}

// WithNumEntries sets the number of entries in the stream buffer table.
func (b Builder) WithNumEntries(n int) Builder {
	b.numEntries = n
	return b
}

// WithPrefetchAhead sets the number of lines to prefetch ahead of the most
// recent access of a confirmed stream.
func (b Builder) WithPrefetchAhead(n int) Builder {
	b.prefetchAhead = n
	return b
}

// WithStrideDetection enables or disables stride detection. When disabled,
// only unit-stride streams can train.
func (b Builder) WithStrideDetection(enable bool) Builder {
	b.detectStride = enable
	return b
}

// WithTrainThreshold sets the number of consistent continuations required
// before a stream is confirmed.
func (b Builder) WithTrainThreshold(n int) Builder {
	b.trainThreshold = n
	return b
}

// WithLineSize sets the cache line size in bytes. It must be a power of two.
func (b Builder) WithLineSize(size uint64) Builder {
	b.lineSize = size
	return b
}

// WithVictimFinder sets the eviction policy. The default is LRU by recency
// stamp with lowest-index tie breaking.
func (b Builder) WithVictimFinder(f VictimFinder) Builder {
	b.victimFinder = f
	return b
}

// Build builds a classifier. It fails with a ConfigError if any parameter
// is out of range.
func (b Builder) Build(name string) (*Classifier, error) {
	if err := b.validate(); err != nil {
		return nil, err
	}

	c := &Classifier{
		HookableBase: hooking.NewHookableBase(),
		name:         name,
		cfg: Config{
			NumEntries:     b.numEntries,
			PrefetchAhead:  b.prefetchAhead,
			DetectStride:   b.detectStride,
			TrainThreshold: b.trainThreshold,
			LineSize:       b.lineSize,
		},
		log2LineSize: bits.TrailingZeros64(b.lineSize),
		victimFinder: b.victimFinder,
	}

	if c.victimFinder == nil {
		c.victimFinder = NewLRUVictimFinder()
	}

	c.maxLine = MaxAddr >> c.log2LineSize

	c.entries = make([]Entry, b.numEntries)
	for i := range c.entries {
		c.entries[i].ID = i
	}

	return c, nil
}

// MustBuild builds a classifier and panics on a configuration error.
func (b Builder) MustBuild(name string) *Classifier {
	c, err := b.Build(name)
	if err != nil {
		panic(err)
	}

	return c
}

func (b Builder) validate() error {
	if b.numEntries <= 0 {
		return &ConfigError{
			Param:  "nEntries",
			Value:  b.numEntries,
			Reason: "must be positive",
		}
	}

	if b.prefetchAhead < 0 {
		return &ConfigError{
			Param:  "nPrefetchAhead",
			Value:  b.prefetchAhead,
			Reason: "must be non-negative",
		}
	}

	if b.trainThreshold < 1 {
		return &ConfigError{
			Param:  "trainThreshold",
			Value:  b.trainThreshold,
			Reason: "must be positive",
		}
	}

	if b.lineSize == 0 || bits.OnesCount64(b.lineSize) != 1 {
		return &ConfigError{
			Param:  "lineSize",
			Value:  b.lineSize,
			Reason: "must be a power of two",
		}
	}

	return nil
}
