package nvdb

import (
	"encoding/binary"
	"math"
	"testing"
)

type testLogger struct {
	lines []string
}

func (l *testLogger) Printf(format string, args ...any) {
	l.lines = append(l.lines, format)
}

func littleEndianLineString(points [][2]float64) []byte {
	buf := []byte{0x01}
	var typeBuf [4]byte
	binary.LittleEndian.PutUint32(typeBuf[:], 2)
	buf = append(buf, typeBuf[:]...)
	var numBuf [4]byte
	binary.LittleEndian.PutUint32(numBuf[:], uint32(len(points)))
	buf = append(buf, numBuf[:]...)
	for _, p := range points {
		var xb, yb [8]byte
		binary.LittleEndian.PutUint64(xb[:], math.Float64bits(p[0]))
		binary.LittleEndian.PutUint64(yb[:], math.Float64bits(p[1]))
		buf = append(buf, xb[:]...)
		buf = append(buf, yb[:]...)
	}
	return buf
}

func TestBuildSegmentsHappyPath(t *testing.T) {
	geoms := [][]byte{
		littleEndianLineString([][2]float64{{13.0, 55.0}, {13.1, 55.0}}),
	}
	columns := []Column{
		{Name: "Kateg_380", Kind: CellInt, Ints: []int32{1}},
	}
	segs, err := BuildSegments(geoms, columns, nil)
	if err != nil {
		t.Fatalf("BuildSegments: %v", err)
	}
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	v := segs[0].Get("Kateg_380")
	if i, ok := v.AsInt(); !ok || i != 1 {
		t.Errorf("Kateg_380 = %+v, want 1", v)
	}
}

func TestBuildSegmentsSkipsBadGeometryAndLogsThrottled(t *testing.T) {
	geoms := make([][]byte, 0, 7)
	for i := 0; i < 6; i++ {
		geoms = append(geoms, []byte{0x07}) // bad byte-order byte
	}
	geoms = append(geoms, littleEndianLineString([][2]float64{{13.0, 55.0}, {13.1, 55.0}}))

	logger := &testLogger{}
	segs, err := BuildSegments(geoms, nil, logger)
	if err != nil {
		t.Fatalf("BuildSegments: %v", err)
	}
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	if len(logger.lines) != 5 {
		t.Errorf("got %d log lines, want 5 (first 5 logged; the 6th is not a multiple of 1000)", len(logger.lines))
	}
}

func TestBuildSegmentsINTMinIsNull(t *testing.T) {
	geoms := [][]byte{littleEndianLineString([][2]float64{{13.0, 55.0}, {13.1, 55.0}})}
	columns := []Column{
		{Name: "Lev_184", Kind: CellInt, Ints: []int32{math.MinInt32}},
	}
	segs, err := BuildSegments(geoms, columns, nil)
	if err != nil {
		t.Fatalf("BuildSegments: %v", err)
	}
	if !segs[0].Get("Lev_184").IsNull() {
		t.Errorf("expected INT_MIN to normalize to null")
	}
}

func TestBuildSegmentsNaNIsNull(t *testing.T) {
	geoms := [][]byte{littleEndianLineString([][2]float64{{13.0, 55.0}, {13.1, 55.0}})}
	columns := []Column{
		{Name: "Bredd_156", Kind: CellFloat, Floats: []float64{math.NaN()}},
	}
	segs, err := BuildSegments(geoms, columns, nil)
	if err != nil {
		t.Fatalf("BuildSegments: %v", err)
	}
	if !segs[0].Get("Bredd_156").IsNull() {
		t.Errorf("expected NaN to normalize to null")
	}
}

func TestBuildSegmentsFloatWithZeroFractionBecomesInt(t *testing.T) {
	geoms := [][]byte{littleEndianLineString([][2]float64{{13.0, 55.0}, {13.1, 55.0}})}
	columns := []Column{
		{Name: "Bredd_156", Kind: CellFloat, Floats: []float64{6.0}},
	}
	segs, err := BuildSegments(geoms, columns, nil)
	if err != nil {
		t.Fatalf("BuildSegments: %v", err)
	}
	v := segs[0].Get("Bredd_156")
	if v.Kind != KindInt || v.I != 6 {
		t.Errorf("Bredd_156 = %+v, want int 6", v)
	}
}

func TestBuildSegmentsESRIBoolNormalization(t *testing.T) {
	geoms := [][]byte{littleEndianLineString([][2]float64{{13.0, 55.0}, {13.1, 55.0}})}
	columns := []Column{
		{Name: "F_ForbudTrafik", Kind: CellInt, Ints: []int32{-1}},
		{Name: "Klass_181", Kind: CellInt, Ints: []int32{-1}}, // not allow-listed
	}
	segs, err := BuildSegments(geoms, columns, nil)
	if err != nil {
		t.Fatalf("BuildSegments: %v", err)
	}
	if i, _ := segs[0].Get("F_ForbudTrafik").AsInt(); i != 1 {
		t.Errorf("F_ForbudTrafik = %d, want 1 (ESRI -1=true normalized)", i)
	}
	if i, _ := segs[0].Get("Klass_181").AsInt(); i != -1 {
		t.Errorf("Klass_181 = %d, want -1 (not allow-listed, left untouched)", i)
	}
}

func TestBuildSegmentsESRIBoolNormalizationFromFloat(t *testing.T) {
	geoms := [][]byte{littleEndianLineString([][2]float64{{13.0, 55.0}, {13.1, 55.0}})}
	columns := []Column{
		{Name: "Motorvag", Kind: CellFloat, Floats: []float64{-1.0}},
	}
	segs, err := BuildSegments(geoms, columns, nil)
	if err != nil {
		t.Fatalf("BuildSegments: %v", err)
	}
	if i, _ := segs[0].Get("Motorvag").AsInt(); i != 1 {
		t.Errorf("Motorvag = %d, want 1", i)
	}
}

func TestSegmentReversePreservesNodeInvariant(t *testing.T) {
	geoms := [][]byte{littleEndianLineString([][2]float64{{13.0, 55.0}, {13.1, 55.0}, {13.2, 55.0}})}
	segs, err := BuildSegments(geoms, nil, nil)
	if err != nil {
		t.Fatalf("BuildSegments: %v", err)
	}
	seg := segs[0]
	oldStart, oldEnd := seg.StartNode, seg.EndNode
	seg.Reverse()
	if seg.StartNode != oldEnd || seg.EndNode != oldStart {
		t.Errorf("Reverse did not swap start/end node hashes")
	}
	if seg.Geometry[0].Lon != 13.2 {
		t.Errorf("Reverse did not flip geometry order")
	}
}
