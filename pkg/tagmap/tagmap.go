// Package tagmap implements the ordered per-segment OSM tag-mapping
// pipeline (bridge/tunnel detection, oneway handling, the highway-class
// ladder, references, directional access/restriction tags, and the
// remaining single-value rules).
package tagmap

import "github.com/e-kotov/nvdb2osmpbf/pkg/nvdb"

// streetNames collects the street-naming pre-pass: the set of non-empty
// motor-vehicle (network type 1) segment names, consulted by the
// cycleway/footway naming policy.
func streetNames(segments []*nvdb.Segment) map[string]bool {
	names := make(map[string]bool)
	for _, seg := range segments {
		netType, ok := seg.Get("Vagtr_474").AsInt()
		if !ok || netType != 1 {
			continue
		}
		name := seg.Get("Namn_130")
		if name.IsNull() {
			continue
		}
		if s := name.AsString(); s != "" {
			names[s] = true
		}
	}
	return names
}

// Tag runs the full ordered rule pipeline over segments in place: the
// bridge and street-name pre-passes, then the fixed per-segment rule
// order.
func Tag(segments []*nvdb.Segment) {
	bridges := detectBridges(segments)
	names := streetNames(segments)

	for _, seg := range segments {
		mapBridgeTunnel(seg, bridges)
		mapOneway(seg)
		mapHighway(seg, names)
		mapMotorwayOverride(seg)
		mapHighwayLinks(seg)
		mapRef(seg)

		mapRoundabout(seg)
		// Cycleways and footways get no motor-vehicle speed/access tags.
		if h := seg.Tags["highway"]; h != "cycleway" && h != "footway" {
			mapMaxspeed(seg)
			mapMotorVehicleAccess(seg)
		}
		mapVehicleRestrictions(seg)
		mapHazmat(seg)
		mapOvertakingRestrictions(seg)
		mapLanes(seg)

		mapSurface(seg)
		mapWidth(seg)
		mapPriorityRoad(seg)
		mapBicycleDesignated(seg)
		mapLowEmissionZone(seg)
		mapName(seg)
		mapBridgeTunnelNames(seg)
		mapLit(seg)
		mapLayer(seg)
	}
}
