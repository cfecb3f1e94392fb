package cluster

// DisjointSet is a union-find forest over the integers [0, n). Parents and
// sizes live in flat arrays and Find is iterative, so neither deep trees nor
// huge components can exhaust the stack. Thread compatible.
type DisjointSet struct {
	parent []uint32
	size   []uint32
	sets   int
}

// NewDisjointSet creates n singleton sets.
func NewDisjointSet(n int) *DisjointSet {
	d := &DisjointSet{
		parent: make([]uint32, n),
		size:   make([]uint32, n),
		sets:   n,
	}
	for i := range d.parent {
		d.parent[i] = uint32(i)
		d.size[i] = 1
	}
	return d
}

// Len returns the number of elements.
func (d *DisjointSet) Len() int { return len(d.parent) }

// Sets returns the current number of disjoint sets.
func (d *DisjointSet) Sets() int { return d.sets }

// Find returns the representative of x's set.
func (d *DisjointSet) Find(x uint32) uint32 {
	for d.parent[x] != x {
		// Path halving.
		d.parent[x] = d.parent[d.parent[x]]
		x = d.parent[x]
	}
	return x
}

// Union merges the sets containing a and b. It returns false if they were
// already in the same set.
func (d *DisjointSet) Union(a, b uint32) bool {
	ra, rb := d.Find(a), d.Find(b)
	if ra == rb {
		return false
	}
	if d.size[ra] < d.size[rb] {
		ra, rb = rb, ra
	}
	d.parent[rb] = ra
	d.size[ra] += d.size[rb]
	d.sets--
	return true
}

// UnionAll merges the sets of all members into one, and returns the number
// of merges that happened.
func (d *DisjointSet) UnionAll(members []uint32) int {
	if len(members) < 2 {
		return 0
	}
	n := 0
	first := members[0]
	for _, m := range members[1:] {
		if d.Union(first, m) {
			n++
		}
	}
	return n
}

// Connected reports whether a and b are in the same set.
func (d *DisjointSet) Connected(a, b uint32) bool { return d.Find(a) == d.Find(b) }

// SizeOf returns the size of x's set.
func (d *DisjointSet) SizeOf(x uint32) int { return int(d.size[d.Find(x)]) }

// Components returns every set as an ascending list of its members. Sets
// are ordered by their smallest member.
func (d *DisjointSet) Components() [][]uint32 {
	n := len(d.parent)
	compOf := make([]int32, n)
	for i := range compOf {
		compOf[i] = -1
	}
	comps := make([][]uint32, 0, d.sets)
	for i := 0; i < n; i++ {
		r := d.Find(uint32(i))
		c := compOf[r]
		if c < 0 {
			c = int32(len(comps))
			compOf[r] = c
			comps = append(comps, make([]uint32, 0, d.size[r]))
		}
		comps[c] = append(comps[c], uint32(i))
	}
	return comps
}
