package expiryreport_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"arff/internal/domain/expiryreport"
	"arff/internal/domain/firefighter"
)

func TestBuildMatrix_General(t *testing.T) {
	m := expiryreport.BuildMatrix(roster(), expiryreport.Filter{Year: 2025}, expiryreport.KindGeneral)

	if diff := cmp.Diff([]string{"SBBR", "SBGR"}, m.Sites()); diff != "" {
		t.Fatalf("sites mismatch (-want +got):\n%s", diff)
	}
	want := []expiryreport.Row{
		{Site: "SBBR", Counts: [12]int{6: 1, 11: 1}, Total: 2},
		{Site: "SBGR", Counts: [12]int{2: 1, 6: 1}, Total: 2},
	}
	if diff := cmp.Diff(want, m.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if m.ColumnTotals != [12]int{2: 1, 6: 2, 11: 1} {
		t.Errorf("ColumnTotals = %v", m.ColumnTotals)
	}
	if m.GrandTotal != 4 {
		t.Errorf("GrandTotal = %d, want 4", m.GrandTotal)
	}
	if got := m.RowTotal("SBGR") + m.RowTotal("SBBR") + m.RowTotal("SBKP"); got != 4 {
		t.Errorf("row totals sum to %d, want 4", got)
	}
}

func TestBuildMatrix_FireAndRegion(t *testing.T) {
	m := expiryreport.BuildMatrix(roster(), expiryreport.Filter{Year: 2025, Region: "CW"}, expiryreport.KindFire)
	if diff := cmp.Diff([]string{"SBBR"}, m.Sites()); diff != "" {
		t.Fatalf("sites mismatch (-want +got):\n%s", diff)
	}
	if m.Rows[0].Counts[11] != 1 || m.GrandTotal != 1 {
		t.Errorf("fire matrix = %+v", m)
	}
}

// TestBuildMatrix_TotalsConsistent checks grand total against both row and column sums.
func TestBuildMatrix_TotalsConsistent(t *testing.T) {
	for _, kind := range []expiryreport.ValidityKind{expiryreport.KindGeneral, expiryreport.KindFire} {
		for year := 2023; year <= 2027; year++ {
			m := expiryreport.BuildMatrix(roster(), expiryreport.Filter{Year: year}, kind)
			cells, cols := 0, 0
			for _, r := range m.Rows {
				for _, n := range r.Counts {
					cells += n
				}
			}
			for _, n := range m.ColumnTotals {
				cols += n
			}
			if cells != m.GrandTotal || cols != m.GrandTotal {
				t.Errorf("%s %d: cells=%d cols=%d grand=%d", kind, year, cells, cols, m.GrandTotal)
			}
		}
	}
}

func TestBuildMatrix_Empty(t *testing.T) {
	m := expiryreport.BuildMatrix(nil, expiryreport.Filter{Year: 2025}, expiryreport.KindGeneral)
	if len(m.Rows) != 0 || m.GrandTotal != 0 || m.ColumnTotals != [12]int{} {
		t.Errorf("empty matrix = %+v", m)
	}
	var buf bytes.Buffer
	if err := m.WriteCSV(&buf); !errors.Is(err, expiryreport.ErrNothingToExport) {
		t.Errorf("WriteCSV err = %v, want ErrNothingToExport", err)
	}
	if buf.Len() != 0 {
		t.Errorf("WriteCSV wrote %d bytes for an empty matrix", buf.Len())
	}
}

func TestMatrix_WriteCSV(t *testing.T) {
	m := expiryreport.BuildMatrix(roster(), expiryreport.Filter{Year: 2025}, expiryreport.KindGeneral)
	var buf bytes.Buffer
	if err := m.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "\xEF\xBB\xBF") {
		t.Fatal("CSV must start with a UTF-8 BOM")
	}
	lines := strings.Split(strings.TrimRight(strings.TrimPrefix(out, "\xEF\xBB\xBF"), "\n"), "\n")
	want := []string{
		"SITE;JAN;FEB;MAR;APR;MAY;JUN;JUL;AUG;SEP;OCT;NOV;DEC;TOTAL",
		"SBBR;0;0;0;0;0;0;1;0;0;0;0;1;2",
		"SBGR;0;0;1;0;0;0;1;0;0;0;0;0;2",
		"TOTAL;0;0;1;0;0;0;2;0;0;0;0;1;4",
	}
	if diff := cmp.Diff(want, lines); diff != "" {
		t.Errorf("CSV mismatch (-want +got):\n%s", diff)
	}
}

func TestMatrix_Filename(t *testing.T) {
	m := expiryreport.BuildMatrix(roster(), expiryreport.Filter{Year: 2026}, expiryreport.KindFire)
	if got := m.Filename("Matrix"); got != "matrix_fire_2026.csv" {
		t.Errorf("Filename = %q", got)
	}
}

func TestBuildMatrix_ReportsSkipped(t *testing.T) {
	records := append(roster(), firefighter.Firefighter{ID: "bad", Name: "Nobody", Site: "SBKP", Tier: firefighter.TierI})
	m := expiryreport.BuildMatrix(records, expiryreport.Filter{Year: 2025}, expiryreport.KindGeneral)
	if len(m.Skipped) != 1 {
		t.Fatalf("Skipped = %+v", m.Skipped)
	}
	if len(m.Rows) != 3 || m.Rows[2].Site != "SBKP" || m.Rows[2].Total != 0 {
		t.Errorf("site with only invalid records should still appear with zero counts: %+v", m.Rows)
	}
}

func TestWriteListCSV(t *testing.T) {
	var buf bytes.Buffer
	err := expiryreport.WriteListCSV(&buf, []string{"NAME", "TAX_ID"}, [][]string{{`Ana "Chefe" Ramos`, "012"}})
	if err != nil {
		t.Fatalf("WriteListCSV: %v", err)
	}
	want := "\xEF\xBB\xBF\"NAME\",\"TAX_ID\"\r\n\"Ana \"\"Chefe\"\" Ramos\",\"012\"\r\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
	if err := expiryreport.WriteListCSV(&buf, []string{"NAME"}, nil); !errors.Is(err, expiryreport.ErrNothingToExport) {
		t.Errorf("err = %v, want ErrNothingToExport", err)
	}
}
