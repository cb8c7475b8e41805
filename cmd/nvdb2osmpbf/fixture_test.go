package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/e-kotov/nvdb2osmpbf/pkg/nvdb"
)

func TestLoadFixtureParsesSampleFile(t *testing.T) {
	geometries, columns, err := loadFixture(filepath.Join("testdata", "sample.ndjson"))
	if err != nil {
		t.Fatalf("loadFixture: %v", err)
	}
	if len(geometries) != 3 {
		t.Fatalf("got %d geometries, want 3", len(geometries))
	}

	var namn, vagtr, kateg *nvdb.Column
	for i := range columns {
		switch columns[i].Name {
		case "Namn_130":
			namn = &columns[i]
		case "Vagtr_474":
			vagtr = &columns[i]
		case "Kateg_380":
			kateg = &columns[i]
		}
	}
	if namn == nil || vagtr == nil || kateg == nil {
		t.Fatalf("missing expected column among %v", columnNames(columns))
	}

	if namn.Kind != nvdb.CellString {
		t.Errorf("Namn_130 kind = %v, want CellString", namn.Kind)
	}
	if got := namn.Strs; len(got) != 3 || got[0] != "Storgatan" || got[2] != "Sidovagen" {
		t.Errorf("Namn_130 values = %v", got)
	}

	if vagtr.Kind != nvdb.CellInt {
		t.Errorf("Vagtr_474 kind = %v, want CellInt", vagtr.Kind)
	}
	for i, v := range vagtr.Ints {
		if v != 1 {
			t.Errorf("Vagtr_474[%d] = %d, want 1", i, v)
		}
	}

	if kateg.Kind != nvdb.CellInt {
		t.Errorf("Kateg_380 kind = %v, want CellInt", kateg.Kind)
	}
	for i, v := range kateg.Ints {
		if v != 4 {
			t.Errorf("Kateg_380[%d] = %d, want 4", i, v)
		}
	}
}

func TestLoadFixtureMissingPropertyIsNA(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sparse.ndjson")
	data := "{\"geometry\": \"0102000000020000000000000000002a400000000000804b403333333333332a400000000000804b40\", \"properties\": {\"Namn_130\": \"A\"}}\n" +
		"{\"geometry\": \"0102000000020000003333333333332a400000000000804b406666666666662a400000000000804b40\", \"properties\": {}}\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	geometries, columns, err := loadFixture(path)
	if err != nil {
		t.Fatalf("loadFixture: %v", err)
	}
	if len(geometries) != 2 {
		t.Fatalf("got %d geometries, want 2", len(geometries))
	}
	if len(columns) != 1 || columns[0].Name != "Namn_130" {
		t.Fatalf("columns = %v, want just Namn_130", columnNames(columns))
	}
	if columns[0].Strs[1] != "" {
		t.Errorf("missing-property row should decode as empty string NA, got %q", columns[0].Strs[1])
	}
}

func columnNames(columns []nvdb.Column) []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.Name
	}
	return names
}
