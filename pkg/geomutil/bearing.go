package geomutil

import (
	"math"

	"github.com/golang/geo/s1"
)

// Bearing returns the spherical bearing in degrees, range [0, 360), when
// traveling from a to b.
func Bearing(a, b Coord) float64 {
	lat1 := s1.Angle(a.Lat * math.Pi / 180)
	lat2 := s1.Angle(b.Lat * math.Pi / 180)
	dLon := s1.Angle((b.Lon - a.Lon) * math.Pi / 180)

	y := math.Sin(float64(dLon)) * math.Cos(float64(lat2))
	x := math.Cos(float64(lat1))*math.Sin(float64(lat2)) -
		math.Sin(float64(lat1))*math.Cos(float64(lat2))*math.Cos(float64(dLon))

	theta := s1.Angle(math.Atan2(y, x))
	deg := theta.Degrees()
	return math.Mod(deg+360, 360)
}

// JunctionAngle returns the signed turn angle, in (-180, 180], when
// traversing from seg1 into seg2. Positive is a left turn, negative a right
// turn. seg1 and seg2 are expected to share an endpoint (one of the four
// start/end identity combinations); the function inspects which one and
// picks the incoming bearing from the second-to-last/last coordinate pair
// of the "incoming" side and the outgoing bearing from the first/second
// coordinate pair of the "outgoing" side, traversing each side in whichever
// direction reaches the shared point. If a segment has only two points its
// whole extent is used for both roles.
func JunctionAngle(seg1, seg2 []Coord) float64 {
	start1, end1 := seg1[0], seg1[len(seg1)-1]
	start2, end2 := seg2[0], seg2[len(seg2)-1]

	var bIn, bOut float64
	switch {
	case Hash(end1) == Hash(start2):
		bIn = Bearing(seg1[secondToLast(seg1)], end1)
		bOut = Bearing(start2, seg2[second(seg2)])
	case Hash(start1) == Hash(end2):
		bIn = Bearing(seg1[second(seg1)], start1)
		bOut = Bearing(end2, seg2[secondToLast(seg2)])
	case Hash(start1) == Hash(start2):
		bIn = Bearing(seg1[second(seg1)], start1)
		bOut = Bearing(start2, seg2[second(seg2)])
	default: // end1 == end2
		bIn = Bearing(seg1[secondToLast(seg1)], end1)
		bOut = Bearing(end2, seg2[secondToLast(seg2)])
	}

	delta := bOut - bIn
	delta = math.Mod(delta+360, 360)
	if delta > 180 {
		delta -= 360
	}
	return -delta
}

func secondToLast(coords []Coord) int {
	if len(coords) < 2 {
		return 0
	}
	return len(coords) - 2
}

func second(coords []Coord) int {
	if len(coords) < 2 {
		return 0
	}
	return 1
}
