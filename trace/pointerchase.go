package trace

type pointerChase struct {
	geom  Geometry
	next  []uint32
	index int
	left  int
}

// NewPointerChase returns a generator that follows a shuffled singly linked
// list embedded in the array, one hop per access, for count accesses. The
// list is built the way the pointer-chase benchmark builds it: successor
// pointers initialized to i+1 mod n, then Fisher-Yates shuffled with the
// benchmark LCG.
func NewPointerChase(geom Geometry, count int, seed uint32) Generator {
	r := lcg{state: seed}

	next := make([]uint32, geom.Elems)
	for i := range next {
		next[i] = uint32((i + 1) % geom.Elems)
	}

	for i := geom.Elems - 1; i > 0; i-- {
		j := int(r.next()) % (i + 1)
		next[i], next[j] = next[j], next[i]
	}

	return &pointerChase{geom: geom, next: next, left: count}
}

func (g *pointerChase) Next() (Access, bool) {
	if g.left == 0 {
		return Access{}, false
	}

	a := Access{Addr: g.geom.addrOf(g.index)}
	g.index = int(g.next[g.index])
	g.left--

	return a, true
}
