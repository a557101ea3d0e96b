// Package trace provides deterministic access-trace generators that mirror
// the memory access patterns of the stream buffer microbenchmarks, and a
// driver that replays them against a classifier.
package trace

// An Access is one element of an address stream.
type Access struct {
	Addr    uint64
	IsWrite bool
}

// A Generator produces a finite sequence of accesses. Next returns false
// when the sequence is exhausted.
type Generator interface {
	Next() (Access, bool)
}

//go:generate mockgen -destination "mock_generator_test.go" -package trace -write_package_comment=false github.com/berkayinceisci/chipyard-stream-buffers/trace Generator

// Geometry describes the array a trace walks over.
type Geometry struct {
	Base     uint64
	Elems    int
	ElemSize uint64
}

func (g Geometry) addrOf(index int) uint64 {
	return g.Base + uint64(index)*g.ElemSize
}

type strided struct {
	geom    Geometry
	stride  int
	isWrite bool
	next    int
}

// NewSequential returns a generator that walks the array one element at a
// time, front to back.
func NewSequential(geom Geometry, isWrite bool) Generator {
	return NewStrided(geom, 1, isWrite)
}

// NewStrided returns a generator that accesses every strideElems-th element.
// A negative stride walks the array back to front, starting at the last
// element.
func NewStrided(geom Geometry, strideElems int, isWrite bool) Generator {
	g := &strided{geom: geom, stride: strideElems, isWrite: isWrite}
	if strideElems < 0 {
		g.next = geom.Elems - 1
	}

	return g
}

func (g *strided) Next() (Access, bool) {
	if g.stride == 0 || g.next < 0 || g.next >= g.geom.Elems {
		return Access{}, false
	}

	a := Access{Addr: g.geom.addrOf(g.next), IsWrite: g.isWrite}
	g.next += g.stride

	return a, true
}

type repeat struct {
	build func() Generator
	times int
	inner Generator
}

// Repeat returns a generator that replays the generator produced by build
// the given number of times back to back.
func Repeat(build func() Generator, times int) Generator {
	return &repeat{build: build, times: times}
}

func (g *repeat) Next() (Access, bool) {
	for {
		if g.inner == nil {
			if g.times == 0 {
				return Access{}, false
			}

			g.times--
			g.inner = g.build()
		}

		a, ok := g.inner.Next()
		if ok {
			return a, true
		}

		g.inner = nil
	}
}
