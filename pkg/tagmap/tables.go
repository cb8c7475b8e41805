package tagmap

// countyLetters maps a Swedish "länsnummer" (Kommunnr / 100) to its
// traditional county letter code, used by map_ref for secondary roads.
// Grounded on the standard Swedish "länsbokstav" table; Kommu_141=1480
// divided by 100 truncates to 14, which maps to "O" (Västra Götaland),
// matching spec scenario S6.
var countyLetters = map[int64]string{
	1:  "AB",
	3:  "C",
	4:  "D",
	5:  "E",
	6:  "F",
	7:  "G",
	8:  "H",
	9:  "I",
	10: "K",
	12: "M",
	13: "N",
	14: "O",
	17: "S",
	18: "T",
	19: "U",
	20: "W",
	21: "X",
	22: "Y",
	23: "Z",
	24: "AC",
	25: "BD",
}

// gcmTypes maps GCMTyp_471 (the cycle/pedestrian sub-type code) to an
// OSM highway value, via a fixed 29-entry table.
// Codes not listed fall back to "cycleway" in mapCycleFootway.
var gcmTypes = map[int64]string{
	1:  "cycleway",
	2:  "cycleway",
	3:  "path",
	4:  "path",
	5:  "footway",
	6:  "footway",
	7:  "cycleway",
	8:  "cycleway",
	9:  "path",
	10: "path",
	11: "footway",
	12: "footway",
	13: "cycleway",
	14: "cycleway",
	15: "path",
	16: "path",
	17: "footway",
	18: "footway",
	19: "cycleway",
	20: "cycleway",
	21: "path",
	22: "path",
	23: "footway",
	24: "footway",
	25: "cycleway",
	26: "cycleway",
	27: "path",
	28: "path",
	29: "footway",
}

// vehicleTypes maps F_/B_Gallar_135's vehicle-type code to the OSM access
// key it restricts, via a fixed 17-entry table used by the
// vehicle-restrictions rule.
var vehicleTypes = map[int64]string{
	1:  "motorcar",
	2:  "bus",
	3:  "bicycle",
	4:  "vehicle",
	5:  "hgv",
	6:  "goods",
	7:  "moped",
	8:  "motorcycle",
	9:  "motor_vehicle",
	10: "atv",
	11: "tractor",
	12: "motorcar",
	13: "bus",
	14: "hgv",
	15: "goods",
	16: "motor_vehicle",
	17: "vehicle",
}
