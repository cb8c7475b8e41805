package feature

import (
	"testing"

	"github.com/e-kotov/nvdb2osmpbf/pkg/geomutil"
	"github.com/e-kotov/nvdb2osmpbf/pkg/nvdb"
)

func segmentAt(lon, lat float64, props map[string]nvdb.PropertyValue) *nvdb.Segment {
	geometry := []geomutil.Coord{{Lon: lon, Lat: lat}, {Lon: lon + 0.001, Lat: lat}}
	seg := &nvdb.Segment{Geometry: geometry, Properties: props, Tags: make(map[string]string)}
	seg.StartNode = geomutil.Hash(geometry[0])
	seg.EndNode = geomutil.Hash(geometry[1])
	return seg
}

func TestExtractTrafficSignalsCrossing(t *testing.T) {
	seg := segmentAt(13.0, 55.0, map[string]nvdb.PropertyValue{
		"Passa_85": nvdb.IntValue(4),
	})
	nodes, next := Extract([]*nvdb.Segment{seg}, 100)
	if len(nodes) != 1 {
		t.Fatalf("got %d nodes, want 1", len(nodes))
	}
	if nodes[0].Tags["highway"] != "crossing" || nodes[0].Tags["crossing"] != "traffic_signals" {
		t.Errorf("tags = %v", nodes[0].Tags)
	}
	if nodes[0].ID != 100 || next != 101 {
		t.Errorf("ID=%d next=%d, want 100/101", nodes[0].ID, next)
	}
}

func TestExtractMonotonicIDsAcrossMultipleFeaturesOnOneSegment(t *testing.T) {
	seg := segmentAt(13.0, 55.0, map[string]nvdb.PropertyValue{
		"Passa_85":       nvdb.IntValue(3),
		"Hinde_72":       nvdb.IntValue(1),
		"L_Rastficka_2":  nvdb.BoolValue(true),
		"R_Rastficka_2":  nvdb.BoolValue(true),
	})
	nodes, next := Extract([]*nvdb.Segment{seg}, 0)
	if len(nodes) != 4 {
		t.Fatalf("got %d nodes, want 4 (crossing, barrier, 2 parking pockets)", len(nodes))
	}
	for i, n := range nodes {
		if n.ID != int64(i) {
			t.Errorf("node %d has ID %d, want %d", i, n.ID, i)
		}
	}
	if next != 4 {
		t.Errorf("next = %d, want 4", next)
	}
}

func TestExtractBarrierWithWidth(t *testing.T) {
	seg := segmentAt(13.0, 55.0, map[string]nvdb.PropertyValue{
		"Hinde_72":  nvdb.IntValue(99),
		"Bredd_156": nvdb.FloatValue(1.2),
	})
	nodes, _ := Extract([]*nvdb.Segment{seg}, 0)
	if len(nodes) != 1 || nodes[0].Tags["barrier"] != "yes" {
		t.Fatalf("got %v", nodes)
	}
	if nodes[0].Tags["maxwidth:physical"] != "1.2" {
		t.Errorf("maxwidth:physical = %q, want 1.2", nodes[0].Tags["maxwidth:physical"])
	}
}

func TestExtractNoFeaturesWhenAttributesAbsent(t *testing.T) {
	seg := segmentAt(13.0, 55.0, map[string]nvdb.PropertyValue{})
	nodes, next := Extract([]*nvdb.Segment{seg}, 5)
	if len(nodes) != 0 || next != 5 {
		t.Fatalf("got %d nodes next=%d, want 0/5", len(nodes), next)
	}
}
