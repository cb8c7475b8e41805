// Package feature extracts independent OSM point-of-interest nodes from
// segment attributes: crossings, traffic calming, barriers, speed
// cameras, rest areas, and parking pockets.
package feature

import (
	"strconv"

	"github.com/e-kotov/nvdb2osmpbf/pkg/geomutil"
	"github.com/e-kotov/nvdb2osmpbf/pkg/nvdb"
)

// Node is an independent OSM node produced by the extractor: it carries
// no segment membership, only an ID, a position, and tags.
type Node struct {
	ID   int64
	Lon  float64
	Lat  float64
	Tags map[string]string
}

// Extract produces zero or more feature Nodes per segment, positioned at
// the segment's first coordinate, assigning IDs monotonically starting
// from startID. It returns the extracted nodes and the next unused ID.
func Extract(segments []*nvdb.Segment, startID int64) ([]Node, int64) {
	nextID := startID
	var nodes []Node

	emit := func(pos geomutil.Coord, tags map[string]string) {
		nodes = append(nodes, Node{ID: nextID, Lon: pos.Lon, Lat: pos.Lat, Tags: tags})
		nextID++
	}

	for _, seg := range segments {
		pos := seg.Geometry[0]

		if tags, ok := crossingTags(seg); ok {
			emit(pos, tags)
		}
		if tags, ok := railwayCrossingTags(seg); ok {
			emit(pos, tags)
		}
		if tags, ok := trafficCalmingTags(seg); ok {
			emit(pos, tags)
		}
		if tags, ok := barrierTags(seg); ok {
			emit(pos, tags)
		}
		if tags, ok := speedCameraTags(seg); ok {
			emit(pos, tags)
		}
		if tags, ok := restAreaTags(seg); ok {
			emit(pos, tags)
		}
		for _, tags := range parkingPocketTags(seg) {
			emit(pos, tags)
		}
	}

	return nodes, nextID
}

func crossingTags(seg *nvdb.Segment) (map[string]string, bool) {
	v, ok := seg.Get("Passa_85").AsInt()
	if !ok {
		return nil, false
	}
	switch v {
	case 3, 4, 5:
		tags := map[string]string{"highway": "crossing"}
		if v == 4 {
			tags["crossing"] = "traffic_signals"
		}
		return tags, true
	default:
		return nil, false
	}
}

func railwayCrossingTags(seg *nvdb.Segment) (map[string]string, bool) {
	v, ok := seg.Get("Vagsk_100").AsInt()
	if !ok || v < 1 || v > 7 {
		return nil, false
	}
	tags := map[string]string{}
	switch v {
	case 1:
		tags["railway"] = "level_crossing"
		tags["crossing:barrier"] = "full"
	case 2:
		tags["railway"] = "level_crossing"
		tags["crossing:barrier"] = "half"
	case 3:
		tags["railway"] = "crossing"
	case 4:
		tags["railway"] = "level_crossing"
		tags["crossing:bell"] = "yes"
	case 5:
		tags["railway"] = "level_crossing"
		tags["crossing:light"] = "yes"
	case 6:
		tags["railway"] = "level_crossing"
		tags["crossing:saltire"] = "yes"
	case 7:
		tags["railway"] = "crossing"
		tags["crossing:light"] = "yes"
	}
	return tags, true
}

func trafficCalmingTags(seg *nvdb.Segment) (map[string]string, bool) {
	v, ok := seg.Get("TypAv_82").AsInt()
	if !ok || v < 1 || v > 9 {
		return nil, false
	}
	kinds := map[int64]string{
		1: "choker", 2: "hump", 3: "chicane", 4: "island",
		5: "dip", 6: "cushion", 7: "table", 8: "yes", 9: "yes",
	}
	return map[string]string{"traffic_calming": kinds[v]}, true
}

func barrierTags(seg *nvdb.Segment) (map[string]string, bool) {
	v, ok := seg.Get("Hinde_72").AsInt()
	if !ok {
		return nil, false
	}
	kinds := map[int64]string{
		1: "bollard", 2: "swing_gate", 3: "cycle_barrier",
		4: "lift_gate", 5: "jersey_barrier", 6: "bus_trap",
	}
	kind, found := kinds[v]
	if !found {
		if v != 99 {
			return nil, false
		}
		kind = "yes"
	}
	tags := map[string]string{"barrier": kind}
	if w, ok := seg.Get("Bredd_156").AsFloat(); ok && w > 0 {
		tags["maxwidth:physical"] = strconv.FormatFloat(w, 'f', 1, 64)
	}
	return tags, true
}

func speedCameraTags(seg *nvdb.Segment) (map[string]string, bool) {
	fTruthy := seg.Get("F_ATK_Matplats").AsBool()
	bTruthy := seg.Get("B_ATK_Matplats").AsBool()
	if !fTruthy && !bTruthy {
		return nil, false
	}
	tags := map[string]string{"highway": "speed_camera"}
	if fTruthy {
		if sp, ok := seg.Get("F_Hogst_36").AsInt(); ok {
			tags["maxspeed"] = strconv.FormatInt(sp, 10)
		}
	} else if bTruthy {
		if sp, ok := seg.Get("B_Hogst_36").AsInt(); ok {
			tags["maxspeed"] = strconv.FormatInt(sp, 10)
		}
	}
	return tags, true
}

func restAreaTags(seg *nvdb.Segment) (map[string]string, bool) {
	v, ok := seg.Get("Rastplats").AsInt()
	if !ok || v <= 0 {
		return nil, false
	}
	tags := map[string]string{"highway": "rest_area"}
	if name := seg.Get("Namn_130"); !name.IsNull() {
		if s := name.AsString(); s != "" {
			tags["name"] = s
		}
	}
	tags["capacity"] = strconv.FormatInt(v, 10)
	if hgv, ok := seg.Get("Lev_184").AsInt(); ok {
		tags["capacity:hgv"] = strconv.FormatInt(hgv, 10)
	}
	return tags, true
}

func parkingPocketTags(seg *nvdb.Segment) []map[string]string {
	var out []map[string]string
	if seg.Get("L_Rastficka_2").AsBool() {
		out = append(out, map[string]string{"amenity": "parking", "parking:lane:left": "yes"})
	}
	if seg.Get("R_Rastficka_2").AsBool() {
		out = append(out, map[string]string{"amenity": "parking", "parking:lane:right": "yes"})
	}
	return out
}
