package expiryreport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"arff/internal/domain/firefighter"
)

// ErrNothingToExport is returned when a matrix has no sites to write.
var ErrNothingToExport = errors.New("nothing to export")

// bom is the UTF-8 byte-order mark spreadsheets use to detect the encoding.
const bom = "\uFEFF"

// MatrixDelimiter separates matrix CSV fields.
const MatrixDelimiter = ';'

// Row is one site's monthly expiry counts.
type Row struct {
	Site   string  `json:"site"`
	Counts [12]int `json:"counts"`
	Total  int     `json:"total"`
}

// Matrix cross-tabulates expiries by site and month for one validity kind.
type Matrix struct {
	Year         int             `json:"year"`
	Kind         ValidityKind    `json:"kind"`
	Region       string          `json:"region,omitempty"`
	Rows         []Row           `json:"rows"`
	ColumnTotals [12]int         `json:"column_totals"`
	GrandTotal   int             `json:"grand_total"`
	Skipped      []SkippedRecord `json:"skipped,omitempty"`
}

// Sites returns the row labels in order.
func (m Matrix) Sites() []string {
	out := make([]string, len(m.Rows))
	for i, r := range m.Rows {
		out[i] = r.Site
	}
	return out
}

// RowTotal returns site's total, 0 when the site has no row.
func (m Matrix) RowTotal(site string) int {
	for _, r := range m.Rows {
		if r.Site == site {
			return r.Total
		}
	}
	return 0
}

// BuildMatrix groups records by site and counts kind expiries per month in filter.Year.
// filter.Site is ignored; every site present after the region restriction becomes a row.
// PRE: records is a read-only snapshot
// POST: Rows sorted by site; GrandTotal equals the sum of ColumnTotals and of row totals
// INVARIANT: empty input yields no rows and all-zero totals
func BuildMatrix(records []firefighter.Firefighter, filter Filter, kind ValidityKind) Matrix {
	m := Matrix{Year: filter.Year, Kind: kind, Region: filter.Region, Rows: []Row{}}

	bySite := make(map[string][]firefighter.Firefighter)
	for _, f := range records {
		if filter.Region != "" && f.Region != filter.Region {
			continue
		}
		bySite[f.Site] = append(bySite[f.Site], f)
	}

	sites := make([]string, 0, len(bySite))
	for s := range bySite {
		sites = append(sites, s)
	}
	sort.Strings(sites)

	for _, site := range sites {
		h := AggregateByMonth(bySite[site], Filter{Year: filter.Year})
		row := Row{Site: site, Counts: h.Count(kind)}
		for i, n := range row.Counts {
			row.Total += n
			m.ColumnTotals[i] += n
		}
		m.GrandTotal += row.Total
		m.Rows = append(m.Rows, row)
		m.Skipped = append(m.Skipped, h.Skipped...)
	}
	return m
}

// Filename returns "<reportType>_<kind>_<year>.csv".
func (m Matrix) Filename(reportType string) string {
	return fmt.Sprintf("%s_%s_%d.csv", strings.ToLower(reportType), m.Kind, m.Year)
}

// Header returns the CSV header row.
func Header() []string {
	h := make([]string, 0, 14)
	h = append(h, "SITE")
	for _, l := range MonthLabels {
		h = append(h, strings.ToUpper(l))
	}
	return append(h, "TOTAL")
}

// WriteCSV writes the matrix as semicolon-delimited UTF-8 with a BOM prefix.
// PRE: w is writable
// POST: header, one row per site and a TOTAL row are written; nothing is written when there are no rows
func (m Matrix) WriteCSV(w io.Writer) error {
	if len(m.Rows) == 0 {
		return ErrNothingToExport
	}
	if _, err := io.WriteString(w, bom); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.Comma = MatrixDelimiter
	if err := cw.Write(Header()); err != nil {
		return err
	}
	for _, r := range m.Rows {
		if err := cw.Write(countsRecord(r.Site, r.Counts, r.Total)); err != nil {
			return err
		}
	}
	if err := cw.Write(countsRecord("TOTAL", m.ColumnTotals, m.GrandTotal)); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

func countsRecord(label string, counts [12]int, total int) []string {
	rec := make([]string, 0, 14)
	rec = append(rec, label)
	for _, n := range counts {
		rec = append(rec, strconv.Itoa(n))
	}
	return append(rec, strconv.Itoa(total))
}
