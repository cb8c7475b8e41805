package geomutil

// DouglasPeucker simplifies coords using the classic recursive algorithm.
// Distance is point-to-segment distance in meters (PointToSegmentDistMeters).
// Points are retained when their distance is >= eps; endpoints are never
// removed. Ported from the reference implementation's simplify_polygon,
// which recurses on [first..=maxIdx] and [maxIdx..last] and splices out the
// duplicated midpoint.
func DouglasPeucker(coords []Coord, eps float64) []Coord {
	if len(coords) <= 2 {
		return coords
	}

	first := coords[0]
	last := coords[len(coords)-1]

	maxDist := -1.0
	maxIdx := 0
	for i := 1; i < len(coords)-1; i++ {
		d := PointToSegmentDistMeters(coords[i], first, last)
		if d > maxDist {
			maxDist = d
			maxIdx = i
		}
	}

	if maxDist >= eps {
		left := DouglasPeucker(coords[:maxIdx+1], eps)
		right := DouglasPeucker(coords[maxIdx:], eps)
		result := make([]Coord, 0, len(left)+len(right)-1)
		result = append(result, left[:len(left)-1]...)
		result = append(result, right...)
		return result
	}

	return []Coord{first, last}
}
