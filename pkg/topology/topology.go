// Package topology merges tagged segments into ways: per-segment
// Douglas-Peucker simplification, method-driven grouping, junction
// detection, and chaining with true-junction and tag-boundary splits.
package topology

import (
	"maps"
	"math"
	"sort"

	"github.com/e-kotov/nvdb2osmpbf/pkg/geomutil"
	"github.com/e-kotov/nvdb2osmpbf/pkg/nvdb"
)

// Method selects the grouping/chaining strategy.
type Method string

const (
	MethodRecursive Method = "recursive"
	MethodRoute     Method = "route"
	MethodRefname   Method = "refname"
	MethodLinear    Method = "linear"
	MethodSegment   Method = "segment"
)

// angleMargin is the maximum |JunctionAngle| tolerated when extending a
// chain; SimplifyEps is the Douglas-Peucker threshold in meters.
const (
	angleMargin = 45.0
	SimplifyEps = 0.2
)

// Way is an ordered list of segment indices sharing one tag map,
// post-simplification.
type Way struct {
	SegmentIndices []int
	Tags           map[string]string
}

// junctionIndex maps a CoordHash to the segment indices incident there (by
// start or end); a CoordHash with 3+ distinct incident segments is a
// "true junction" that forces a way boundary.
type junctionIndex map[geomutil.CoordHash][]int

// Simplify runs the full simplification pipeline: per-segment Douglas-Peucker,
// grouping by method, junction indexing, and chaining. Unknown methods
// default to "refname".
func Simplify(segments []*nvdb.Segment, method Method) []Way {
	if SimplifyEps > 0 {
		for _, seg := range segments {
			simplified := geomutil.DouglasPeucker(seg.Geometry, SimplifyEps)
			if len(simplified) >= 2 {
				seg.Geometry = simplified
				seg.StartNode = geomutil.Hash(simplified[0])
				seg.EndNode = geomutil.Hash(simplified[len(simplified)-1])
			}
		}
	}

	groups := groupSegments(segments, method)
	junctions := buildJunctions(segments)

	switch method {
	case MethodSegment:
		return simplifyPerSegment(segments)
	// TODO: MethodRecursive should pick the best-angle chain recursively
	// with oneway-compatibility checks rather than reusing linear chaining.
	case MethodRecursive, MethodRoute, MethodRefname, MethodLinear:
		return simplifyLinear(segments, groups, junctions)
	default:
		return simplifyLinear(segments, groupSegments(segments, MethodRefname), junctions)
	}
}

func simplifyPerSegment(segments []*nvdb.Segment) []Way {
	ways := make([]Way, len(segments))
	for i, seg := range segments {
		ways[i] = Way{SegmentIndices: []int{i}, Tags: cloneTags(seg.Tags)}
	}
	return ways
}

func groupSegments(segments []*nvdb.Segment, method Method) map[string][]int {
	groups := make(map[string][]int)
	for idx, seg := range segments {
		var key string
		switch method {
		case MethodRoute:
			key = seg.Get("ROUTE_ID").AsString()
		case MethodSegment:
			key = "" // unused: Simplify short-circuits before grouping matters
		default: // refname, recursive, linear
			key = groupByRefname(seg)
		}
		groups[key] = append(groups[key], idx)
	}
	return groups
}

// groupByRefname concatenates ref (or the countryside road-number
// attribute), name, and highway — segments sharing all three are
// candidates for chaining into the same way.
func groupByRefname(seg *nvdb.Segment) string {
	key := seg.Tags["ref"]
	if key == "" {
		key = seg.Get("Vagnr_10370").AsString()
	}
	key += seg.Tags["name"]
	key += seg.Tags["highway"]
	return key
}

func buildJunctions(segments []*nvdb.Segment) junctionIndex {
	j := make(junctionIndex)
	for idx, seg := range segments {
		j[seg.StartNode] = append(j[seg.StartNode], idx)
		j[seg.EndNode] = append(j[seg.EndNode], idx)
	}
	return j
}

// simplifyLinear is the default chaining algorithm: no
// oneway or group check inside chaining (grouping already enforces
// compatibility); extension is gated solely on |JunctionAngle| < 45°.
func simplifyLinear(segments []*nvdb.Segment, groups map[string][]int, junctions junctionIndex) []Way {
	var ways []Way

	groupKeys := make([]string, 0, len(groups))
	for k := range groups {
		groupKeys = append(groupKeys, k)
	}
	sort.Strings(groupKeys)

	for _, key := range groupKeys {
		indices := groups[key]
		if len(indices) == 0 {
			continue
		}

		remaining := make(map[int]bool, len(indices))
		for _, idx := range indices {
			remaining[idx] = true
		}

		byStart := make(map[geomutil.CoordHash][]int)
		byEnd := make(map[geomutil.CoordHash][]int)
		for _, idx := range indices {
			seg := segments[idx]
			byStart[seg.StartNode] = append(byStart[seg.StartNode], idx)
			byEnd[seg.EndNode] = append(byEnd[seg.EndNode], idx)
		}

		for len(remaining) > 0 {
			startIdx := lowestRemaining(remaining)
			delete(remaining, startIdx)

			chain := []int{startIdx}

			// Extend forward from the chain's current last end.
			lastEnd := segments[startIdx].EndNode
			for {
				next, ok := findExtension(byStart[lastEnd], remaining, func(cand int) bool {
					return math.Abs(geomutil.JunctionAngle(segments[chain[len(chain)-1]].Geometry, segments[cand].Geometry)) < angleMargin
				})
				if !ok {
					break
				}
				chain = append(chain, next)
				delete(remaining, next)
				lastEnd = segments[next].EndNode
			}

			// Extend backward from the chain's current first start.
			firstStart := segments[chain[0]].StartNode
			for {
				next, ok := findExtension(byEnd[firstStart], remaining, func(cand int) bool {
					return math.Abs(geomutil.JunctionAngle(segments[cand].Geometry, segments[chain[0]].Geometry)) < angleMargin
				})
				if !ok {
					break
				}
				chain = append([]int{next}, chain...)
				delete(remaining, next)
				firstStart = segments[chain[0]].StartNode
			}

			ways = append(ways, splitChain(segments, junctions, chain)...)
		}
	}

	return ways
}

func lowestRemaining(remaining map[int]bool) int {
	min := -1
	for idx := range remaining {
		if min == -1 || idx < min {
			min = idx
		}
	}
	return min
}

func findExtension(candidates []int, remaining map[int]bool, accept func(int) bool) (int, bool) {
	for _, cand := range candidates {
		if !remaining[cand] {
			continue
		}
		if accept(cand) {
			return cand, true
		}
	}
	return 0, false
}

// splitChain applies the true-junction split (step 5) then the
// tag-equality split (step 6) to a single chained sequence of indices.
func splitChain(segments []*nvdb.Segment, junctions junctionIndex, chain []int) []Way {
	var junctionChunks [][]int
	current := []int{}
	for i, idx := range chain {
		current = append(current, idx)
		if i < len(chain)-1 {
			if incident := junctions[segments[idx].EndNode]; len(incident) >= 3 {
				junctionChunks = append(junctionChunks, current)
				current = []int{}
			}
		}
	}
	if len(current) > 0 {
		junctionChunks = append(junctionChunks, current)
	}

	var ways []Way
	for _, sub := range junctionChunks {
		ways = append(ways, splitByTags(segments, sub)...)
	}
	return ways
}

func splitByTags(segments []*nvdb.Segment, sub []int) []Way {
	var ways []Way
	currentWay := []int{sub[0]}
	currentTags := segments[sub[0]].Tags

	for _, idx := range sub[1:] {
		if tagsEqual(segments[idx].Tags, currentTags) {
			currentWay = append(currentWay, idx)
			continue
		}
		ways = append(ways, Way{SegmentIndices: currentWay, Tags: cloneTags(currentTags)})
		currentWay = []int{idx}
		currentTags = segments[idx].Tags
	}
	ways = append(ways, Way{SegmentIndices: currentWay, Tags: cloneTags(currentTags)})
	return ways
}

func tagsEqual(a, b map[string]string) bool {
	return maps.Equal(a, b)
}

func cloneTags(tags map[string]string) map[string]string {
	out := make(map[string]string, len(tags))
	maps.Copy(out, tags)
	return out
}
