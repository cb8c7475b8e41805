// Package wkb decodes WKB and PostGIS-style EWKB linestring and
// multilinestring geometries into plain coordinate slices.
package wkb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/e-kotov/nvdb2osmpbf/pkg/geomutil"
)

// ErrUnsupportedByteOrder is returned when the leading byte-order byte is
// neither 0x00 (big-endian) nor 0x01 (little-endian).
var ErrUnsupportedByteOrder = errors.New("wkb: unsupported byte-order byte")

// ErrUnsupportedGeometryType is returned for any base geometry type other
// than LineString (2) or MultiLineString (5).
var ErrUnsupportedGeometryType = errors.New("wkb: unsupported geometry type")

// ErrEmptyMultiLineString is returned when a MultiLineString has zero parts.
var ErrEmptyMultiLineString = errors.New("wkb: empty multilinestring")

// ErrTruncated is returned when the buffer ends before the header declares.
var ErrTruncated = errors.New("wkb: truncated buffer")

const (
	geomTypeLineString      = 2
	geomTypeMultiLineString = 5

	flagZ    = 0x80000000
	flagM    = 0x40000000
	flagSRID = 0x20000000
)

// Result is the output of decoding a single WKB/EWKB geometry.
type Result struct {
	Points []geomutil.Coord
	// DiscardedParts counts the additional linestrings in a
	// MultiLineString beyond the first, intentionally dropped.
	DiscardedParts int
}

// Decode parses a WKB or EWKB LineString/MultiLineString. For
// MultiLineString only the first inner linestring is retained.
func Decode(data []byte) (Result, error) {
	r := &cursor{data: data}

	byteOrderByte, err := r.byte()
	if err != nil {
		return Result{}, err
	}
	order, err := byteOrder(byteOrderByte)
	if err != nil {
		return Result{}, err
	}

	rawType, err := r.uint32(order)
	if err != nil {
		return Result{}, err
	}

	if rawType&flagSRID != 0 {
		if _, err := r.uint32(order); err != nil {
			return Result{}, err
		}
	}

	cleared := rawType &^ uint32(flagZ|flagM|flagSRID)
	isoDim := uint32(0)
	baseType := cleared
	if cleared >= 1000 {
		isoDim = cleared / 1000
		baseType = cleared % 1000
	}
	hasZ := rawType&flagZ != 0 || isoDim == 1 || isoDim == 3
	hasM := rawType&flagM != 0 || isoDim == 2 || isoDim == 3
	coordSize := 16 + boolBytes(hasZ) + boolBytes(hasM)

	switch baseType {
	case geomTypeLineString:
		points, err := decodeLineStringBody(r, order, coordSize)
		if err != nil {
			return Result{}, err
		}
		return Result{Points: points}, nil
	case geomTypeMultiLineString:
		return decodeMultiLineString(r, order)
	default:
		return Result{}, fmt.Errorf("%w: base type %d", ErrUnsupportedGeometryType, baseType)
	}
}

func decodeMultiLineString(r *cursor, order binary.ByteOrder) (Result, error) {
	numLines, err := r.uint32(order)
	if err != nil {
		return Result{}, err
	}
	if numLines == 0 {
		return Result{}, ErrEmptyMultiLineString
	}

	// Each inner geometry is a complete WKB geometry with its own
	// byte-order byte, type, and optional SRID flag.
	innerOrderByte, err := r.byte()
	if err != nil {
		return Result{}, err
	}
	innerOrder, err := byteOrder(innerOrderByte)
	if err != nil {
		return Result{}, err
	}
	innerRawType, err := r.uint32(innerOrder)
	if err != nil {
		return Result{}, err
	}
	if innerRawType&flagSRID != 0 {
		if _, err := r.uint32(innerOrder); err != nil {
			return Result{}, err
		}
	}

	innerCleared := innerRawType &^ uint32(flagZ|flagM|flagSRID)
	innerIsoDim := uint32(0)
	innerBase := innerCleared
	if innerCleared >= 1000 {
		innerIsoDim = innerCleared / 1000
		innerBase = innerCleared % 1000
	}
	if innerBase != geomTypeLineString {
		return Result{}, fmt.Errorf("%w: multilinestring part base type %d", ErrUnsupportedGeometryType, innerBase)
	}
	innerHasZ := innerRawType&flagZ != 0 || innerIsoDim == 1 || innerIsoDim == 3
	innerHasM := innerRawType&flagM != 0 || innerIsoDim == 2 || innerIsoDim == 3
	innerCoordSize := 16 + boolBytes(innerHasZ) + boolBytes(innerHasM)

	points, err := decodeLineStringBody(r, innerOrder, innerCoordSize)
	if err != nil {
		return Result{}, err
	}
	return Result{Points: points, DiscardedParts: int(numLines) - 1}, nil
}

func decodeLineStringBody(r *cursor, order binary.ByteOrder, coordSize int) ([]geomutil.Coord, error) {
	numPoints, err := r.uint32(order)
	if err != nil {
		return nil, err
	}
	points := make([]geomutil.Coord, 0, numPoints)
	for i := uint32(0); i < numPoints; i++ {
		x, err := r.float64(order)
		if err != nil {
			return nil, err
		}
		y, err := r.float64(order)
		if err != nil {
			return nil, err
		}
		if err := r.skip(coordSize - 16); err != nil {
			return nil, err
		}
		points = append(points, geomutil.Coord{Lon: x, Lat: y})
	}
	return points, nil
}

func boolBytes(b bool) int {
	if b {
		return 8
	}
	return 0
}

func byteOrder(b byte) (binary.ByteOrder, error) {
	switch b {
	case 0x00:
		return binary.BigEndian, nil
	case 0x01:
		return binary.LittleEndian, nil
	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnsupportedByteOrder, b)
	}
}

// cursor is a minimal byte-order-aware reader, in the style of the
// teacher's pkg/graph/binary.go manual binary.Read usage.
type cursor struct {
	data []byte
	pos  int
}

func (c *cursor) byte() (byte, error) {
	if c.pos+1 > len(c.data) {
		return 0, ErrTruncated
	}
	b := c.data[c.pos]
	c.pos++
	return b, nil
}

func (c *cursor) uint32(order binary.ByteOrder) (uint32, error) {
	if c.pos+4 > len(c.data) {
		return 0, ErrTruncated
	}
	v := order.Uint32(c.data[c.pos : c.pos+4])
	c.pos += 4
	return v, nil
}

func (c *cursor) float64(order binary.ByteOrder) (float64, error) {
	if c.pos+8 > len(c.data) {
		return 0, ErrTruncated
	}
	bits := order.Uint64(c.data[c.pos : c.pos+8])
	c.pos += 8
	return math.Float64frombits(bits), nil
}

func (c *cursor) skip(n int) error {
	if n <= 0 {
		return nil
	}
	if c.pos+n > len(c.data) {
		return ErrTruncated
	}
	c.pos += n
	return nil
}
