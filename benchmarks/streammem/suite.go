// Package streammem defines the access-pattern phases of the stream buffer
// microbenchmark suite: sequential read/write, strided read, LCG-random
// read, pointer chasing, and a cold-cache line walk. The patterns and their
// constants follow the RISC-V benchmark programs the prefetcher was tuned
// with.
package streammem

import (
	"github.com/berkayinceisci/chipyard-stream-buffers/trace"
)

// Benchmark geometry. 8192 8-byte elements make a 64 KB array, large enough
// to exceed an L1 cache; 8 elements fill one 64-byte line.
const (
	DefaultElems      = 8192
	DefaultElemSize   = 8
	DefaultIterations = 4
	StrideElems       = 8
	LineElems         = 8
)

// A Phase is one named benchmark pattern. Gen builds a fresh generator for
// every run so that phases can be replayed.
type Phase struct {
	Name string
	Gen  func() trace.Generator
}

// A Suite holds the benchmark phases for one array geometry.
type Suite struct {
	geom       trace.Geometry
	iterations int
}

// NewSuite creates a benchmark suite over the given array geometry.
func NewSuite(geom trace.Geometry, iterations int) Suite {
	return Suite{geom: geom, iterations: iterations}
}

// DefaultSuite creates the suite with the original benchmark geometry,
// starting at the given base address.
func DefaultSuite(base uint64) Suite {
	return NewSuite(trace.Geometry{
		Base:     base,
		Elems:    DefaultElems,
		ElemSize: DefaultElemSize,
	}, DefaultIterations)
}

// Phases returns the benchmark phases in their canonical order.
func (s Suite) Phases() []Phase {
	return []Phase{
		{Name: "sequential-read", Gen: s.sequentialRead},
		{Name: "sequential-write", Gen: s.sequentialWrite},
		{Name: "strided-read", Gen: s.stridedRead},
		{Name: "random-read", Gen: s.randomRead},
		{Name: "pointer-chase", Gen: s.pointerChase},
		{Name: "cold-linewalk", Gen: s.coldLinewalk},
	}
}

// Phase returns the phase with the given name, if it exists.
func (s Suite) Phase(name string) (Phase, bool) {
	for _, p := range s.Phases() {
		if p.Name == name {
			return p, true
		}
	}

	return Phase{}, false
}

func (s Suite) sequentialRead() trace.Generator {
	return trace.Repeat(func() trace.Generator {
		return trace.NewSequential(s.geom, false)
	}, s.iterations)
}

func (s Suite) sequentialWrite() trace.Generator {
	return trace.Repeat(func() trace.Generator {
		return trace.NewSequential(s.geom, true)
	}, s.iterations)
}

func (s Suite) stridedRead() trace.Generator {
	return trace.Repeat(func() trace.Generator {
		return trace.NewStrided(s.geom, StrideElems, false)
	}, s.iterations)
}

// randomRead replays the same precomputed index sequence every iteration,
// as the benchmark does.
func (s Suite) randomRead() trace.Generator {
	return trace.Repeat(func() trace.Generator {
		return trace.NewRandom(s.geom, s.geom.Elems, trace.RandomSeed, false)
	}, s.iterations)
}

// pointerChase keeps chasing across iterations without restarting, as the
// benchmark does.
func (s Suite) pointerChase() trace.Generator {
	return trace.NewPointerChase(
		s.geom, s.geom.Elems*s.iterations, trace.ChaseSeed)
}

// coldLinewalk touches one element per line of a second, never-before-seen
// array, exposing pure compulsory misses to the prefetcher.
func (s Suite) coldLinewalk() trace.Generator {
	coldGeom := trace.Geometry{
		Base:     s.geom.Base + uint64(s.geom.Elems)*s.geom.ElemSize,
		Elems:    s.geom.Elems,
		ElemSize: s.geom.ElemSize,
	}

	return trace.NewStrided(coldGeom, LineElems, false)
}
