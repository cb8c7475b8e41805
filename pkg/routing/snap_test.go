package routing

import (
	"testing"

	"github.com/paulmach/osm"

	"github.com/e-kotov/nvdb2osmpbf/pkg/graph"
	osmparser "github.com/e-kotov/nvdb2osmpbf/pkg/osm"
)

func buildTestGraph(t *testing.T) *graph.Graph {
	t.Helper()
	result := &osmparser.ParseResult{
		Edges: []osmparser.RawEdge{
			{FromNodeID: 1, ToNodeID: 2, Weight: 1000},
			{FromNodeID: 2, ToNodeID: 3, Weight: 1000},
		},
		NodeLat: map[osm.NodeID]float64{1: 55.0, 2: 55.0, 3: 55.1},
		NodeLon: map[osm.NodeID]float64{1: 13.0, 2: 13.1, 3: 13.1},
	}
	return graph.Build(result)
}

func TestSnapperFindsNearestEdge(t *testing.T) {
	g := buildTestGraph(t)
	snapper := NewSnapper(g)

	res, err := snapper.Snap(55.0, 13.05)
	if err != nil {
		t.Fatalf("Snap: %v", err)
	}
	if res.Dist > maxSnapDistMeters {
		t.Errorf("Dist = %v, want <= %v", res.Dist, maxSnapDistMeters)
	}
}

func TestSnapperRejectsFarPoint(t *testing.T) {
	g := buildTestGraph(t)
	snapper := NewSnapper(g)

	if _, err := snapper.Snap(10.0, 10.0); err != ErrPointTooFar {
		t.Fatalf("Snap far point: got err %v, want ErrPointTooFar", err)
	}
}
