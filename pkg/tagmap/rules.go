package tagmap

import (
	"strconv"
	"strings"

	"github.com/e-kotov/nvdb2osmpbf/pkg/nvdb"
)

// mapBridgeTunnel is the bridge/tunnel rule. Construction codes 1/4 are over-bridge
// (or middle-layer) and always get bridge=yes; codes 2/3 are under-bridge
// and get tunnel=yes only when the bridge group resolved to "tunnel", or
// when the segment carries no bridge identity at all but is itself long
// or off the primary road network, or when its own code is 3.
func mapBridgeTunnel(seg *nvdb.Segment, bridges map[string]*Bridge) {
	idv := seg.Get("Ident_191")
	construction, hasConstruction := seg.Get("Konst_190").AsInt()

	if !idv.IsNull() && hasConstruction {
		id := idv.AsString()
		b := bridges[id]

		switch construction {
		case 1, 4:
			seg.Tags["bridge"] = "yes"
			if b != nil {
				seg.Tags["layer"] = b.Layer
			} else {
				seg.Tags["layer"] = "1"
			}
			return
		case 2, 3:
			tunnel := construction == 3 || (b != nil && b.Tag == "tunnel")
			if tunnel {
				seg.Tags["tunnel"] = "yes"
				seg.Tags["layer"] = "-1"
			}
			return
		}
	}

	if !hasConstruction {
		return
	}
	switch construction {
	case 2, 3:
		netType, hasNet := seg.Get("Vagtr_474").AsInt()
		lengthM := seg.ShapeLength * degreesToApproxMeters
		if !hasNet || netType != 1 || lengthM > 50 || construction == 3 {
			seg.Tags["tunnel"] = "yes"
			seg.Tags["layer"] = "-1"
		}
	}
}

// mapOneway must run before every other directional
// rule: it may physically reverse the geometry, which changes
// start_node/end_node for everything downstream.
func mapOneway(seg *nvdb.Segment) {
	fForbidden, _ := seg.Get("F_ForbjudenFardriktning").AsInt()
	bForbidden, _ := seg.Get("B_ForbjudenFardriktning").AsInt()

	switch {
	case fForbidden == 1 && bForbidden != 1:
		seg.Reverse()
		seg.Tags["oneway"] = "yes"
		seg.OnewayDirection = nvdb.OnewayBackward
		return
	case bForbidden == 1 && fForbidden != 1:
		seg.Tags["oneway"] = "yes"
		seg.OnewayDirection = nvdb.OnewayForward
		return
	}

	if korfa, ok := seg.Get("Korfa_524").AsInt(); ok && korfa == 1 {
		seg.Tags["oneway"] = "yes"
		seg.OnewayDirection = nvdb.OnewayForward
	}
}

// mapHighway is the highway-class priority ladder. Ferry and
// cycleway/footway branches return early; road-category branches fall
// through to later rules (links, ref, motorway override).
func mapHighway(seg *nvdb.Segment, streetNames map[string]bool) {
	if ferjeled, _ := seg.Get("Farjeled").AsInt(); ferjeled == 1 {
		mapFerry(seg)
		return
	}

	if netType, ok := seg.Get("Vagtr_474").AsInt(); ok && (netType == 2 || netType == 4) {
		mapCycleFootway(seg, netType, streetNames)
		return
	}

	if kateg, ok := seg.Get("Kateg_380").AsInt(); ok {
		switch kateg {
		case 1:
			seg.Tags["highway"] = "trunk"
		case 2:
			seg.Tags["highway"] = "trunk"
		case 3:
			seg.Tags["highway"] = "primary"
		case 4:
			seg.Tags["highway"] = "secondary"
		}
		if _, set := seg.Tags["highway"]; set {
			return
		}
	}

	if gagata, _ := seg.Get("L_Gagata").AsInt(); gagata == 1 {
		seg.Tags["highway"] = "pedestrian"
		return
	}
	if lfn, _ := seg.Get("L_Gangfartsomrade").AsInt(); lfn == 1 {
		seg.Tags["highway"] = "living_street"
		return
	}

	if klass, ok := seg.Get("Klass_181").AsInt(); ok {
		if h, found := highwayFromFunctionalClass(klass); found {
			seg.Tags["highway"] = h
			return
		}
	}

	mapPrivateServiceTrack(seg)
}

func highwayFromFunctionalClass(klass int64) (string, bool) {
	switch klass {
	case 1, 2:
		return "trunk", true
	case 3:
		return "primary", true
	case 4:
		return "secondary", true
	case 5:
		return "tertiary", true
	case 6:
		return "unclassified", true
	case 7:
		return "residential", true
	default:
		return "", false
	}
}

// mapPrivateServiceTrack is the final rung of the ladder, driven by the
// road-holder attribute and functional class.
func mapPrivateServiceTrack(seg *nvdb.Segment) {
	vaghall, _ := seg.Get("Vaghall_160").AsInt()
	klass, hasKlass := seg.Get("Klass_181").AsInt()

	switch {
	case vaghall == 3:
		seg.Tags["highway"] = "service"
		seg.Tags["access"] = "private"
	case hasKlass && klass >= 8:
		seg.Tags["highway"] = "track"
	default:
		seg.Tags["highway"] = "service"
	}
}

// ferryCategory derives the ferry= value from the same road-category
// attribute (Kateg_380) the highway ladder uses for ordinary roads, so a
// category-1/2 car ferry reads as trunk and category-3 as primary;
// Farjekat_382 (a ferry-specific category code) is consulted only when
// Kateg_380 is absent.
func ferryCategory(seg *nvdb.Segment) string {
	kateg, ok := seg.Get("Kateg_380").AsInt()
	if !ok {
		kateg, ok = seg.Get("Farjekat_382").AsInt()
	}
	switch {
	case ok && (kateg == 1 || kateg == 2):
		return "trunk"
	case ok && kateg == 3:
		return "primary"
	default:
		return "yes"
	}
}

func mapFerry(seg *nvdb.Segment) {
	seg.Tags["route"] = "ferry"
	seg.Tags["foot"] = "yes"

	seg.Tags["ferry"] = ferryCategory(seg)

	if motor, _ := seg.Get("F_ForbudTrafik").AsInt(); motor != 1 {
		seg.Tags["motor_vehicle"] = "yes"
	}

	if huvnr := seg.Get("Huvnr_556_1"); !huvnr.IsNull() {
		ref := huvnr.AsString()
		if ref != "" && ref != "0" {
			if kateg, ok := seg.Get("Kateg_380").AsInt(); ok && (kateg == 1 || kateg == 2) {
				seg.Tags["ref"] = "E " + ref
			} else {
				seg.Tags["ref"] = ref
			}
		}
	}

	if name := seg.Get("Farjenamn_383"); !name.IsNull() {
		if s := name.AsString(); s != "" {
			seg.Tags["name"] = s
		}
	}
}

// mapCycleFootway handles network types 2 (cycle) and 4 (foot), driven by
// GCMTyp_471 with a sidewalk override, then swaps cycleway->footway for
// network type 4, then applies a cycleway/footway-aware naming policy
// against the motor-vehicle street-name set collected in the pre-pass.
func mapCycleFootway(seg *nvdb.Segment, netType int64, streetNames map[string]bool) {
	if sidewalk, _ := seg.Get("Trotoar_473").AsInt(); sidewalk == 1 {
		seg.Tags["highway"] = "footway"
		seg.Tags["footway"] = "sidewalk"
	} else if gcm, ok := seg.Get("GCMTyp_471").AsInt(); ok {
		if h, found := gcmTypes[gcm]; found {
			seg.Tags["highway"] = h
		} else {
			seg.Tags["highway"] = "cycleway"
		}
	} else {
		seg.Tags["highway"] = "cycleway"
	}

	if netType == 4 && seg.Tags["highway"] == "cycleway" {
		seg.Tags["highway"] = "footway"
	}

	name := seg.Get("Namn_130")
	if name.IsNull() {
		return
	}
	s := name.AsString()
	if s == "" {
		return
	}
	if seg.Tags["highway"] == "cycleway" || seg.Tags["highway"] == "footway" {
		if streetNames[s] {
			seg.Tags["name"] = s
		}
	}
}

// mapMotorwayOverride upgrades select roads to highway=motorway.
func mapMotorwayOverride(seg *nvdb.Segment) {
	if v, _ := seg.Get("Motorvag").AsInt(); v == 1 {
		seg.Tags["highway"] = "motorway"
		return
	}
	if v, _ := seg.Get("Motortrafikled").AsInt(); v == 1 {
		seg.Tags["motorroad"] = "yes"
	}
}

// mapHighwayLinks appends _link to ramp/slip-road highway values.
func mapHighwayLinks(seg *nvdb.Segment) {
	h, ok := seg.Tags["highway"]
	if !ok || (h != "motorway" && h != "trunk" && h != "primary") {
		return
	}
	if !seg.Get("Fprior_183").IsNull() {
		return
	}
	lev, hasLev := seg.Get("Lev_184").AsInt()
	if !hasLev || lev >= 4 {
		return
	}
	roundabout, _ := seg.Get("F_Cirkulationsplats").AsInt()
	roundabout2, _ := seg.Get("B_Cirkulationsplats").AsInt()
	if roundabout == 1 || roundabout2 == 1 {
		return
	}
	seg.Tags["highway"] = h + "_link"
}

// mapRef maps the route-reference number onto the OSM ref tag.
func mapRef(seg *nvdb.Segment) {
	if _, exists := seg.Tags["ref"]; exists {
		return
	}
	huvnr := seg.Get("Huvnr_556_1")
	if huvnr.IsNull() {
		return
	}
	ref := huvnr.AsString()
	if ref == "" || ref == "0" {
		return
	}

	kateg, _ := seg.Get("Kateg_380").AsInt()
	switch kateg {
	case 1, 2:
		seg.Tags["ref"] = "E " + ref
	case 4:
		kommu, _ := seg.Get("Kommu_141").AsInt()
		if letter, ok := countyLetters[kommu/100]; ok {
			seg.Tags["ref"] = letter + " " + ref
		} else {
			seg.Tags["ref"] = ref
		}
	default:
		seg.Tags["ref"] = ref
	}
}

// mapRoundabout, mapMaxspeed, mapMotorVehicleAccess, and
// mapOvertakingRestrictions route through the directional-tag helper.
// mapLanes does not: it writes one undirected lanes tag derived from
// Korfa_524 and emits no lanes:forward/lanes:backward variants.
func mapRoundabout(seg *nvdb.Segment) {
	directionalTag(seg.Tags, "junction", "roundabout", true,
		seg.Get("F_Cirkulationsplats"), seg.Get("B_Cirkulationsplats"), seg.OnewayDirection)
}

func mapMaxspeed(seg *nvdb.Segment) {
	directionalTag(seg.Tags, "maxspeed", "", false,
		seg.Get("F_Hogst_36"), seg.Get("B_Hogst_36"), seg.OnewayDirection)
}

func mapMotorVehicleAccess(seg *nvdb.Segment) {
	directionalTag(seg.Tags, "motor_vehicle", "no", true,
		seg.Get("F_ForbudTrafik"), seg.Get("B_ForbudTrafik"), seg.OnewayDirection)
}

func mapOvertakingRestrictions(seg *nvdb.Segment) {
	directionalTag(seg.Tags, "overtaking", "no", true,
		seg.Get("F_Omkorningsforbud"), seg.Get("B_Omkorningsforbud"), seg.OnewayDirection)
}

func mapLanes(seg *nvdb.Segment) {
	korfa, ok := seg.Get("Korfa_524").AsInt()
	if !ok {
		return
	}
	var lanes int64
	switch korfa {
	case 1:
		lanes = 1
	case 2, 3:
		lanes = 2
	case 4:
		lanes = 3
	case 5:
		lanes = 4
	default:
		return
	}
	seg.Tags["lanes"] = strconv.FormatInt(lanes, 10)
}

// mapHazmat maps hazardous-materials restrictions, via the directional helper.
func mapHazmat(seg *nvdb.Segment) {
	directionalTag(seg.Tags, "hazmat", "no", true,
		seg.Get("F_Farligt_144"), seg.Get("B_Farligt_144"), seg.OnewayDirection)
}

// mapVehicleRestrictions implements the special-cased vehicle-type/weight
// format used here: it bypasses directionalTag in favor of
// direct logic producing "<tag>:conditional = no @ (weight>W)" or plain
// "<tag>=no", with the hgv case instead producing maxweight.
func mapVehicleRestrictions(seg *nvdb.Segment) {
	applyVehicleRestriction(seg, seg.Get("F_Gallar_135"), seg.Get("F_Bervikt_140"), "forward")
	applyVehicleRestriction(seg, seg.Get("B_Gallar_135"), seg.Get("B_Bervikt_140"), "backward")
}

func applyVehicleRestriction(seg *nvdb.Segment, vehicleCode, weight nvdb.PropertyValue, side string) {
	code, ok := vehicleCode.AsInt()
	if !ok {
		return
	}
	tag, found := vehicleTypes[code]
	if !found {
		return
	}

	suffix := ":" + side
	if seg.OnewayDirection == nvdb.OnewayForward && side == "forward" ||
		seg.OnewayDirection == nvdb.OnewayBackward && side == "backward" {
		suffix = ""
	}

	w, hasWeight := weight.AsFloat()

	if tag == "hgv" {
		if hasWeight && w > 0 {
			seg.Tags["maxweight"+suffix] = strconv.FormatFloat(w, 'f', -1, 64)
		}
		return
	}

	if hasWeight && w > 0 {
		seg.Tags[tag+suffix+":conditional"] = formatWeightCondition(w)
	} else {
		seg.Tags[tag] = "no"
	}
}

// mapSurface, mapWidth, mapPriorityRoad, mapBicycleDesignated,
// mapLowEmissionZone, mapName, mapBridgeTunnelNames, mapLit, mapLayer are
// The remaining single-value rules use type-specific trimming.
func mapSurface(seg *nvdb.Segment) {
	if v, ok := seg.Get("Slitl_152").AsInt(); ok {
		switch v {
		case 1:
			seg.Tags["surface"] = "paved"
		case 2:
			seg.Tags["surface"] = "unpaved"
		case 3:
			seg.Tags["surface"] = "gravel"
		}
	}
}

func mapWidth(seg *nvdb.Segment) {
	if w, ok := seg.Get("Bredd_156").AsFloat(); ok && w > 0 && w < 50 {
		seg.Tags["width"] = strconv.FormatFloat(w, 'f', 1, 64)
	}
}

func mapPriorityRoad(seg *nvdb.Segment) {
	if v, _ := seg.Get("Farled_185").AsInt(); v == 1 {
		seg.Tags["priority_road"] = "designated"
	}
}

func mapBicycleDesignated(seg *nvdb.Segment) {
	if v, _ := seg.Get("C_Rekbilvagcykeltrafik").AsInt(); v == 1 {
		seg.Tags["bicycle"] = "designated"
	}
}

func mapLowEmissionZone(seg *nvdb.Segment) {
	if v, _ := seg.Get("Miljozon").AsInt(); v == 1 {
		seg.Tags["low_emission_zone"] = "yes"
	}
}

func mapName(seg *nvdb.Segment) {
	if _, exists := seg.Tags["name"]; exists {
		return
	}
	name := seg.Get("Namn_130")
	if name.IsNull() {
		return
	}
	s := trimNAValue(name.AsString())
	if s != "" {
		seg.Tags["name"] = s
	}
}

func mapBridgeTunnelNames(seg *nvdb.Segment) {
	other := trimNAValue(seg.Get("AnnatNamn_149").AsString())
	if other != "" {
		lower := strings.ToLower(other)
		if seg.Tags["tunnel"] == "yes" && strings.Contains(lower, "tunneln") {
			seg.Tags["tunnel:name"] = other
		}
		if seg.Tags["bridge"] == "yes" && strings.Contains(lower, "bron") {
			seg.Tags["bridge:name"] = other
		}
	}

	if seg.Tags["bridge"] == "yes" || seg.Tags["tunnel"] == "yes" {
		if desc := trimNAValue(seg.Get("Beskr_280").AsString()); desc != "" {
			seg.Tags["description"] = desc
		}
	}
}

func mapLit(seg *nvdb.Segment) {
	if v, _ := seg.Get("GCM_belyst").AsInt(); v == 1 {
		seg.Tags["lit"] = "yes"
	}
}

func mapLayer(seg *nvdb.Segment) {
	if _, hasLayer := seg.Tags["layer"]; hasLayer {
		return
	}
	if seg.Tags["bridge"] == "yes" {
		seg.Tags["layer"] = "1"
	}
}

// trimNAValue drops the NVDB string sentinels "NA", "-1", "0" as if they
// were empty, per the type-specific trimming rule.
func trimNAValue(s string) string {
	switch s {
	case "NA", "-1", "0":
		return ""
	default:
		return s
	}
}
