package graph

// UnionFind implements a disjoint-set data structure with path halving
// and union by rank.
type UnionFind struct {
	parent []uint32
	rank   []byte // byte is sufficient, max rank ~30 for realistic graphs
	size   []uint32
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n uint32) *UnionFind {
	parent := make([]uint32, n)
	size := make([]uint32, n)
	for i := uint32(0); i < n; i++ {
		parent[i] = i
		size[i] = 1
	}
	return &UnionFind{
		parent: parent,
		rank:   make([]byte, n),
		size:   size,
	}
}

// Find returns the representative of the set containing x, with path halving.
func (uf *UnionFind) Find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]] // path halving
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already same set.
func (uf *UnionFind) Union(x, y uint32) bool {
	rx := uf.Find(x)
	ry := uf.Find(y)
	if rx == ry {
		return false
	}

	// Union by rank.
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// Size returns the size of the set containing x.
func (uf *UnionFind) Size(x uint32) uint32 {
	return uf.size[uf.Find(x)]
}

// labelComponents assigns every node a compact component label. Labels are
// numbered in order of each component's first node, keeping them stable
// across rebuilds of the same dataset.
func labelComponents(g *Graph) ([]uint32, uint32) {
	if g.NumNodes == 0 {
		return nil, 0
	}

	uf := NewUnionFind(g.NumNodes)
	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			uf.Union(u, g.Head[e])
		}
	}

	labels := make([]uint32, g.NumNodes)
	rootLabel := make(map[uint32]uint32)
	var next uint32
	for i := uint32(0); i < g.NumNodes; i++ {
		root := uf.Find(i)
		label, ok := rootLabel[root]
		if !ok {
			label = next
			rootLabel[root] = label
			next++
		}
		labels[i] = label
	}
	return labels, next
}

// ComponentSizes returns the node count of every component.
func ComponentSizes(g *Graph) []uint32 {
	sizes := make([]uint32, g.NumComponents)
	for _, label := range g.Component {
		sizes[label]++
	}
	return sizes
}

// LargestComponent returns the label and size of the biggest component.
func LargestComponent(g *Graph) (label, size uint32) {
	for l, s := range ComponentSizes(g) {
		if s > size {
			label = uint32(l)
			size = s
		}
	}
	return label, size
}
