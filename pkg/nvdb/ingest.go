package nvdb

import (
	"fmt"
	"log"
	"math"

	"github.com/e-kotov/nvdb2osmpbf/pkg/geomutil"
	"github.com/e-kotov/nvdb2osmpbf/pkg/wkb"
)

// intNA is the sentinel used by the 32-bit integer NVDB columns to mean
// "no value" (ESRI's INT_MIN convention).
const intNA = math.MinInt32

// CellKind mirrors a column's declared NVDB storage type.
type CellKind int

const (
	CellInt CellKind = iota
	CellFloat
	CellString
	CellBool
)

// Cell is one row's value within a typed column. Only booleans carry an
// explicit NA flag (NABool), which distinguishes NA from false; integer
// and float columns mark NA with the INT_MIN and NaN sentinels instead.
type Cell struct {
	Kind    CellKind
	Int     int32
	Float   float64
	Str     string
	Bool    bool
	NABool  bool
}

// Column is a named, typed sequence of cell values, one per row.
type Column struct {
	Name   string
	Kind   CellKind
	Ints   []int32
	Floats []float64
	Strs   []string
	Bools  []Cell // only populated when Kind == CellBool, to carry NABool
}

// booleanAllowList is the fixed set of NVDB field names that use the ESRI
// -1=true convention.
var booleanAllowList = map[string]bool{
	"F_ForbudTrafik": true, "B_ForbudTrafik": true,
	"F_ForbjudenFardriktning": true, "B_ForbjudenFardriktning": true,
	"F_Cirkulationsplats": true, "B_Cirkulationsplats": true,
	"TattbebyggtOmrade": true, "Farjeled": true,
	"Motorvag": true, "Motortrafikled": true,
	"GCM_belyst": true, "GCM_passage": true,
	"F_Omkorningsforbud": true, "B_Omkorningsforbud": true,
	"L_Gagata": true, "R_Gagata": true,
	"L_Gangfartsomrade": true, "R_Gangfartsomrade": true,
	"Miljozon": true, "C_Rekbilvagcykeltrafik": true,
	"Rastplats": true, "L_Rastficka_2": true, "R_Rastficka_2": true,
	"F_ATK_Matplats": true, "B_ATK_Matplats": true,
}

// Logger is the minimal sink for row-level ingestion diagnostics, an
// injectable interface wrapping the stdlib log.Logger.
type Logger interface {
	Printf(format string, args ...any)
}

// StdLogger adapts the standard library's default logger to Logger.
type StdLogger struct{}

func (StdLogger) Printf(format string, args ...any) { log.Printf(format, args...) }

// BuildSegments decodes one Segment per row from parallel geometries and
// columns. Rows whose geometry fails to decode are skipped and logged;
// the first few offenders are logged individually, then every 1000th
// thereafter, to avoid flooding output on a systematically bad column.
func BuildSegments(geometries [][]byte, columns []Column, logger Logger) ([]*Segment, error) {
	if logger == nil {
		logger = StdLogger{}
	}

	for _, col := range columns {
		n := columnLen(col)
		if n != len(geometries) {
			return nil, fmt.Errorf("nvdb: column %q has %d rows, want %d", col.Name, n, len(geometries))
		}
	}

	segments := make([]*Segment, 0, len(geometries))
	skipped := 0

	for row, raw := range geometries {
		res, err := wkb.Decode(raw)
		if err != nil {
			skipped++
			if skipped <= 5 || skipped%1000 == 0 {
				logger.Printf("nvdb: skipping row %d: %v (skipped=%d)", row, err, skipped)
			}
			continue
		}
		if res.DiscardedParts > 0 {
			logger.Printf("nvdb: row %d: discarded %d extra multilinestring part(s)", row, res.DiscardedParts)
		}
		if len(res.Points) < 2 {
			skipped++
			if skipped <= 5 || skipped%1000 == 0 {
				logger.Printf("nvdb: skipping row %d: fewer than 2 points (skipped=%d)", row, skipped)
			}
			continue
		}

		geometry := make([]geomutil.Coord, len(res.Points))
		for i, p := range res.Points {
			geometry[i] = geomutil.Canonicalize(p)
		}

		props := make(map[string]PropertyValue, len(columns))
		for _, col := range columns {
			v, ok := cellValue(col, row)
			if !ok {
				continue
			}
			if booleanAllowList[col.Name] {
				v = normalizeESRIBool(v)
			}
			props[col.Name] = v
		}

		segments = append(segments, newSegment(geometry, props))
	}

	return segments, nil
}

func columnLen(col Column) int {
	switch col.Kind {
	case CellInt:
		return len(col.Ints)
	case CellFloat:
		return len(col.Floats)
	case CellString:
		return len(col.Strs)
	case CellBool:
		return len(col.Bools)
	default:
		return 0
	}
}

// cellValue extracts row's value from col as a PropertyValue, returning
// ok=false for NA cells (INT_MIN, NaN, or an NA-flagged boolean).
func cellValue(col Column, row int) (PropertyValue, bool) {
	switch col.Kind {
	case CellInt:
		i := col.Ints[row]
		if i == intNA {
			return Null, false
		}
		return IntValue(int64(i)), true
	case CellFloat:
		f := col.Floats[row]
		if math.IsNaN(f) {
			return Null, false
		}
		if f == math.Trunc(f) {
			return IntValue(int64(f)), true
		}
		return FloatValue(f), true
	case CellString:
		return StringValue(col.Strs[row]), true
	case CellBool:
		c := col.Bools[row]
		if c.NABool {
			return Null, false
		}
		return BoolValue(c.Bool), true
	default:
		return Null, false
	}
}

// normalizeESRIBool maps the ESRI convention -1=true to 1/true for
// allow-listed fields, regardless of whether the value arrived as an
// integer or as a float with a zero fractional part.
func normalizeESRIBool(v PropertyValue) PropertyValue {
	switch v.Kind {
	case KindInt:
		if v.I == -1 {
			return IntValue(1)
		}
	case KindFloat:
		if v.F == -1 {
			return IntValue(1)
		}
	}
	return v
}
