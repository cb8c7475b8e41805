package main

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/e-kotov/nvdb2osmpbf/pkg/nvdb"
)

// fixtureRow is one newline-delimited JSON line: a hex-encoded WKB/EWKB
// geometry and its typed NVDB attribute map, standing in for a
// geodatabase row without requiring a geodatabase connection.
type fixtureRow struct {
	Geometry   string                     `json:"geometry"`
	Properties map[string]json.RawMessage `json:"properties"`
}

// loadFixture reads a newline-delimited JSON fixture file and returns
// the parallel geometries/columns BuildSegments expects. Each column's
// Kind is inferred from the first row that supplies a non-null value
// for it; a later cell whose JSON type disagrees with that Kind is
// treated as NA for that cell.
func loadFixture(path string) ([][]byte, []nvdb.Column, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	var rows []fixtureRow
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var row fixtureRow
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			return nil, nil, fmt.Errorf("fixture line %d: %w", lineNo, err)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("scan fixture: %w", err)
	}

	geometries := make([][]byte, len(rows))
	for i, row := range rows {
		raw, err := hex.DecodeString(row.Geometry)
		if err != nil {
			return nil, nil, fmt.Errorf("fixture row %d: bad hex geometry: %w", i, err)
		}
		geometries[i] = raw
	}

	columns := buildColumns(rows)
	return geometries, columns, nil
}

// buildColumns transposes the per-row property maps into the
// per-column, typed representation nvdb.BuildSegments consumes.
func buildColumns(rows []fixtureRow) []nvdb.Column {
	order := make([]string, 0)
	seen := make(map[string]bool)
	kinds := make(map[string]nvdb.CellKind)
	kindFromNull := make(map[string]bool)

	for _, row := range rows {
		names := make([]string, 0, len(row.Properties))
		for name := range row.Properties {
			names = append(names, name)
		}
		sort.Strings(names) // deterministic column discovery order
		for _, name := range names {
			if !seen[name] {
				seen[name] = true
				order = append(order, name)
			} else if !kindFromNull[name] {
				continue
			}
			raw := row.Properties[name]
			kinds[name] = inferKind(raw)
			s := strings.TrimSpace(string(raw))
			kindFromNull[name] = s == "null" || s == ""
		}
	}

	columns := make([]nvdb.Column, len(order))
	for ci, name := range order {
		kind := kinds[name]
		col := nvdb.Column{Name: name, Kind: kind}
		switch kind {
		case nvdb.CellInt:
			col.Ints = make([]int32, len(rows))
		case nvdb.CellFloat:
			col.Floats = make([]float64, len(rows))
		case nvdb.CellString:
			col.Strs = make([]string, len(rows))
		case nvdb.CellBool:
			col.Bools = make([]nvdb.Cell, len(rows))
		}

		for ri, row := range rows {
			raw, ok := row.Properties[name]
			if !ok {
				setNA(&col, ri)
				continue
			}
			if !fillCell(&col, ri, raw) {
				setNA(&col, ri)
			}
		}
		columns[ci] = col
	}
	return columns
}

// inferKind classifies a JSON value's NVDB storage type: booleans and
// strings map directly; a JSON number maps to CellInt unless its
// literal form has a fraction or exponent, in which case it's
// CellFloat. Null values defer classification to a later row.
func inferKind(raw json.RawMessage) nvdb.CellKind {
	s := strings.TrimSpace(string(raw))
	switch {
	case s == "null" || s == "":
		return nvdb.CellString // placeholder; overwritten once a real value is seen
	case s == "true" || s == "false":
		return nvdb.CellBool
	case len(s) > 0 && s[0] == '"':
		return nvdb.CellString
	case strings.ContainsAny(s, ".eE"):
		return nvdb.CellFloat
	default:
		return nvdb.CellInt
	}
}

// fillCell decodes raw into column col at row ri, returning false if
// raw's JSON type doesn't match the column's inferred Kind (or is
// null), leaving the caller to mark the cell NA.
func fillCell(col *nvdb.Column, ri int, raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	if s == "null" || s == "" {
		return false
	}
	switch col.Kind {
	case nvdb.CellInt:
		var v int64
		if err := json.Unmarshal(raw, &v); err != nil {
			return false
		}
		col.Ints[ri] = int32(v)
		return true
	case nvdb.CellFloat:
		var v float64
		if err := json.Unmarshal(raw, &v); err != nil {
			return false
		}
		col.Floats[ri] = v
		return true
	case nvdb.CellString:
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return false
		}
		col.Strs[ri] = v
		return true
	case nvdb.CellBool:
		var v bool
		if err := json.Unmarshal(raw, &v); err != nil {
			return false
		}
		col.Bools[ri] = nvdb.Cell{Kind: nvdb.CellBool, Bool: v}
		return true
	default:
		return false
	}
}

// setNA marks row ri of col as absent, using the sentinel each
// nvdb.Column cell kind uses (INT_MIN, NaN, or an explicit NABool
// flag); string columns have no NA representation so they get "".
func setNA(col *nvdb.Column, ri int) {
	switch col.Kind {
	case nvdb.CellInt:
		col.Ints[ri] = math.MinInt32
	case nvdb.CellFloat:
		col.Floats[ri] = math.NaN()
	case nvdb.CellBool:
		col.Bools[ri] = nvdb.Cell{Kind: nvdb.CellBool, NABool: true}
	case nvdb.CellString:
		col.Strs[ri] = ""
	}
}
