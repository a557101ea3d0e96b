package trace

// The benchmarks use this LCG for all randomized patterns.
const (
	lcgMultiplier = 1103515245
	lcgIncrement  = 12345

	// RandomSeed is the seed the random-read benchmark resets the LCG to.
	RandomSeed = 12345

	// ChaseSeed is the seed the pointer-chase benchmark shuffles with.
	ChaseSeed = 54321
)

type lcg struct {
	state uint32
}

func (r *lcg) next() uint32 {
	r.state = r.state*lcgMultiplier + lcgIncrement
	return (r.state >> 16) & 0x7FFF
}

type random struct {
	geom    Geometry
	indices []uint32
	next    int
	isWrite bool
}

// NewRandom returns a generator that replays count accesses to
// pseudo-randomly chosen elements. The index sequence is precomputed from
// the seed, exactly as the random-read benchmark does.
func NewRandom(geom Geometry, count int, seed uint32, isWrite bool) Generator {
	r := lcg{state: seed}

	indices := make([]uint32, count)
	for i := range indices {
		indices[i] = r.next() % uint32(geom.Elems)
	}

	return &random{geom: geom, indices: indices, isWrite: isWrite}
}

func (g *random) Next() (Access, bool) {
	if g.next >= len(g.indices) {
		return Access{}, false
	}

	a := Access{
		Addr:    g.geom.addrOf(int(g.indices[g.next])),
		IsWrite: g.isWrite,
	}
	g.next++

	return a, true
}
