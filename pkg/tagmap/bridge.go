package tagmap

import "github.com/e-kotov/nvdb2osmpbf/pkg/nvdb"

// Bridge aggregates per-bridge-identity state across all segments sharing
// an Ident_191 value: car/cycle under-bridge counts, the longest
// over-bridge length, a layer string, and a derived group tag.
type Bridge struct {
	CarCount   int
	CycleCount int
	Length     float64
	Layer      string
	Tag        string // "bridge" or "tunnel"
}

// detectBridges is the bridge-identity pre-pass: group segments by bridge
// identity (Ident_191) and classify each group's under/over-bridge mix.
func detectBridges(segments []*nvdb.Segment) map[string]*Bridge {
	bridges := make(map[string]*Bridge)

	for _, seg := range segments {
		idv := seg.Get("Ident_191")
		if idv.IsNull() {
			continue
		}
		id := idv.AsString()

		construction, ok := seg.Get("Konst_190").AsInt()
		if !ok {
			continue
		}

		b, ok := bridges[id]
		if !ok {
			b = &Bridge{Layer: "1"}
			bridges[id] = b
		}

		switch construction {
		case 2, 4:
			netType, _ := seg.Get("Vagtr_474").AsInt()
			if netType == 1 && construction != 3 {
				b.CarCount++
			} else {
				b.CycleCount++
			}
		case 1:
			if seg.ShapeLength > b.Length {
				b.Length = seg.ShapeLength
			}
		}
	}

	for _, b := range bridges {
		lengthMeters := b.Length * degreesToApproxMeters
		switch {
		case b.CarCount > 0 || lengthMeters > 50:
			b.Tag = "bridge"
		case b.CycleCount > 0:
			b.Tag = "tunnel"
		default:
			b.Tag = "bridge"
		}
	}

	return bridges
}

// degreesToApproxMeters converts the degree-space shape_length into an
// approximate metric length for the "longer than 50m" bridge/tunnel
// check. One degree of latitude is ~111,320 m; this mirrors
// haversineLike's scale without importing geomutil's full
// point-to-point model for a single scalar conversion.
const degreesToApproxMeters = 111_320.0
