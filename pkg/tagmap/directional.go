package tagmap

import (
	"fmt"

	"github.com/e-kotov/nvdb2osmpbf/pkg/nvdb"
)

// directionalTag implements the shared directional-tag helper:
// given a tag name, an optional fixed replacement value for a truthy
// (==1) property, and the forward/backward property values, it emits
// either a single collapsed tag, a oneway-direction-selected tag, or a
// pair of :forward/:backward tags.
func directionalTag(tags map[string]string, tag string, fixedValue string, hasFixed bool, forward, backward nvdb.PropertyValue, oneway nvdb.OnewayDirection) {
	fv, fok := directionalValue(forward, fixedValue, hasFixed)
	bv, bok := directionalValue(backward, fixedValue, hasFixed)

	if !fok && !bok {
		return
	}
	if !fok {
		fv = ""
	}
	if !bok {
		bv = ""
	}

	if fv == bv && fok == bok {
		tags[tag] = fv
		return
	}

	switch oneway {
	case nvdb.OnewayForward:
		if fok {
			tags[tag] = fv
		}
	case nvdb.OnewayBackward:
		if bok {
			tags[tag] = bv
		}
	default:
		if fok {
			tags[tag+":forward"] = fv
		}
		if bok {
			tags[tag+":backward"] = bv
		}
	}
}

// directionalValue renders a single directional property: absent/zero
// properties are "not present" (ok=false); a truthy (==1) value is
// replaced by fixedValue when provided, otherwise stringified verbatim.
func directionalValue(v nvdb.PropertyValue, fixedValue string, hasFixed bool) (string, bool) {
	if v.IsNull() {
		return "", false
	}
	if i, ok := v.AsInt(); ok && i == 0 {
		return "", false
	}
	if hasFixed {
		if i, ok := v.AsInt(); ok && i == 1 {
			return fixedValue, true
		}
	}
	return v.AsString(), true
}

// formatWeightCondition renders the "no @ (weight>W)" conditional value
// used by the vehicle-restrictions rule.
func formatWeightCondition(weight float64) string {
	return fmt.Sprintf("no @ (weight>%g)", weight)
}
