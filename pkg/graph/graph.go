// Package graph builds a CSR (Compressed Sparse Row) adjacency structure
// over the directed edges pkg/osm extracts from a produced PBF, and
// extracts its weakly connected components. It exists to let
// cmd/nvdb2osmpbf's --verify step cross-check the network
// pkg/topology/pkg/pbfwriter emitted — whether the road graph is one
// connected piece, and whether ferry links actually bridge otherwise
// separate coastlines — not to serve routing queries.
package graph

// Graph represents a directed graph in CSR format, built from the
// time-weighted edges pkg/osm.Parse extracts from a produced PBF.
type Graph struct {
	NumNodes uint32
	NumEdges uint32
	FirstOut []uint32  // len: NumNodes + 1; FirstOut[i]..FirstOut[i+1] are edges from node i
	Head     []uint32  // len: NumEdges; target node for each edge
	Weight   []uint32  // len: NumEdges; travel time in milliseconds
	Ferry    []bool    // len: NumEdges; true for edges from a route=ferry way
	NodeLat  []float64 // len: NumNodes
	NodeLon  []float64 // len: NumNodes
}

// EdgesFrom returns the range of edge indices for edges originating from node u.
func (g *Graph) EdgesFrom(u uint32) (start, end uint32) {
	return g.FirstOut[u], g.FirstOut[u+1]
}

// FerryEdgeCount counts edges carried over a route=ferry way.
func (g *Graph) FerryEdgeCount() int {
	n := 0
	for _, f := range g.Ferry {
		if f {
			n++
		}
	}
	return n
}
