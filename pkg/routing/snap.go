// Package routing provides the smallest amount of shortest-path and
// nearest-road machinery cmd/nvdb2osmpbf's --verify step needs to sanity
// check a produced network: is it one connected piece, and do the feature
// nodes pkg/feature placed actually sit on a road.
package routing

import (
	"errors"
	"math"

	"github.com/tidwall/rtree"

	"github.com/e-kotov/nvdb2osmpbf/pkg/geomutil"
	"github.com/e-kotov/nvdb2osmpbf/pkg/graph"
)

const maxSnapDistMeters = 500.0

// ErrPointTooFar is returned when the query point is too far from any road.
var ErrPointTooFar = errors.New("point too far from road")

// SnapResult represents a point snapped to the nearest road edge.
type SnapResult struct {
	EdgeIdx uint32  // index into the graph's edge arrays
	NodeU   uint32  // source node of the edge
	NodeV   uint32  // target node of the edge
	Dist    float64 // distance in meters from query point to the edge
}

// snapEntry is the payload stored per indexed edge.
type snapEntry struct {
	edgeIdx uint32
	source  uint32
}

// searchPadDegrees widens a query point's bounding box, in degrees, for
// the first rtree.Search; Snap widens it fourfold on each retry and then
// rejects matches farther than maxSnapDistMeters.
const searchPadDegrees = 0.01

// Snapper answers nearest-road queries over an R-tree spatial index of
// edge bounding boxes, used to confirm a pkg/feature POI node lands on
// the produced road network.
type Snapper struct {
	tree rtree.RTree
	g    *graph.Graph
}

// NewSnapper builds an R-tree index from the graph's edges, keyed by each
// edge's axis-aligned lat/lon bounding box.
func NewSnapper(g *graph.Graph) *Snapper {
	s := &Snapper{g: g}
	for u := uint32(0); u < g.NumNodes; u++ {
		start, end := g.EdgesFrom(u)
		for e := start; e < end; e++ {
			v := g.Head[e]
			uLat, uLon := g.NodeLat[u], g.NodeLon[u]
			vLat, vLon := g.NodeLat[v], g.NodeLon[v]

			min := [2]float64{math.Min(uLon, vLon), math.Min(uLat, vLat)}
			max := [2]float64{math.Max(uLon, vLon), math.Max(uLat, vLat)}
			s.tree.Insert(min, max, snapEntry{edgeIdx: e, source: u})
		}
	}
	return s
}

// Snap finds the nearest road edge to the given lat/lng.
func (s *Snapper) Snap(lat, lng float64) (SnapResult, error) {
	bestDist := math.Inf(1)
	var bestResult SnapResult
	found := false

	pad := searchPadDegrees
	for attempt := 0; attempt < 3; attempt++ {
		bestDist = math.Inf(1)
		found = false

		min := [2]float64{lng - pad, lat - pad}
		max := [2]float64{lng + pad, lat + pad}

		p := geomutil.Coord{Lat: lat, Lon: lng}
		s.tree.Search(min, max, func(_, _ [2]float64, data interface{}) bool {
			entry := data.(snapEntry)
			u := entry.source
			v := s.g.Head[entry.edgeIdx]

			a := geomutil.Coord{Lat: s.g.NodeLat[u], Lon: s.g.NodeLon[u]}
			b := geomutil.Coord{Lat: s.g.NodeLat[v], Lon: s.g.NodeLon[v]}
			exactDist := geomutil.PointToSegmentDistMeters(p, a, b)

			if exactDist < bestDist {
				bestDist = exactDist
				found = true
				bestResult = SnapResult{
					EdgeIdx: entry.edgeIdx,
					NodeU:   u,
					NodeV:   v,
					Dist:    exactDist,
				}
			}
			return true
		})

		if found {
			break
		}
		pad *= 4 // widen and retry: the first window found nothing
	}

	if !found || bestDist > maxSnapDistMeters {
		return SnapResult{}, ErrPointTooFar
	}
	return bestResult, nil
}
