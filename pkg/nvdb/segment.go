package nvdb

import "github.com/e-kotov/nvdb2osmpbf/pkg/geomutil"

// OnewayDirection records whether a segment's geometry flows with or
// against its original digitized direction, or carries no restriction.
type OnewayDirection int

const (
	OnewayNone OnewayDirection = iota
	OnewayForward
	OnewayBackward
)

func (d OnewayDirection) String() string {
	switch d {
	case OnewayForward:
		return "forward"
	case OnewayBackward:
		return "backward"
	default:
		return "none"
	}
}

// Segment is the atomic unit of the pipeline: one row of NVDB geometry
// plus attributes, progressively enriched by later stages (tags,
// oneway direction, internal node IDs).
type Segment struct {
	Geometry  []geomutil.Coord
	StartNode geomutil.CoordHash
	EndNode   geomutil.CoordHash

	// ShapeLength is the geometry length in degrees (not meters); used
	// only for relative comparisons such as "longest over-bridge".
	ShapeLength float64

	Properties map[string]PropertyValue
	Tags       map[string]string

	OnewayDirection OnewayDirection
	InternalNodeIDs []int64
}

// newSegment builds a Segment from already-canonicalized geometry,
// establishing the start/end node invariant.
func newSegment(geometry []geomutil.Coord, props map[string]PropertyValue) *Segment {
	return &Segment{
		Geometry:    geometry,
		StartNode:   geomutil.Hash(geometry[0]),
		EndNode:     geomutil.Hash(geometry[len(geometry)-1]),
		ShapeLength: geomutil.LengthDegrees(geometry),
		Properties:  props,
		Tags:        make(map[string]string),
	}
}

// Reverse flips the geometry in place and refreshes StartNode/EndNode,
// preserving the invariant that OnewayBackward implies a physically
// reversed geometry so "oneway=yes" always means flow in the stored
// direction.
func (s *Segment) Reverse() {
	for i, j := 0, len(s.Geometry)-1; i < j; i, j = i+1, j-1 {
		s.Geometry[i], s.Geometry[j] = s.Geometry[j], s.Geometry[i]
	}
	s.StartNode = geomutil.Hash(s.Geometry[0])
	s.EndNode = geomutil.Hash(s.Geometry[len(s.Geometry)-1])
}

// Get returns the property value for name, or Null if absent.
func (s *Segment) Get(name string) PropertyValue {
	if v, ok := s.Properties[name]; ok {
		return v
	}
	return Null
}
