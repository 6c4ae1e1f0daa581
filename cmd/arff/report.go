package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	firefighterStore "arff/internal/adapters/storage/firefighter"
	"arff/internal/application/projections"
	"arff/internal/domain/expiryreport"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Produce expiry reports from the roster",
}

var (
	reportYear   int
	reportKind   string
	reportRegion string
	reportOut    string
)

var reportMatrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Write the site by month expiry matrix as CSV",
	Long: `Counts the credentials of the chosen kind (general or fire) expiring in each
month of --year, one row per site, and writes the semicolon-delimited CSV.

--out defaults to matrix_<kind>_<year>.csv in the current directory; "-" writes to
standard output. An empty matrix writes nothing and exits with an error.`,
	Args: cobra.NoArgs,
	RunE: runReportMatrix,
}

func init() {
	f := reportMatrixCmd.Flags()
	f.IntVar(&reportYear, "year", time.Now().Year(), "calendar year to report")
	f.StringVar(&reportKind, "kind", string(expiryreport.KindGeneral), "validity kind: general or fire")
	f.StringVar(&reportRegion, "region", "", "restrict to one region")
	f.StringVar(&reportOut, "out", "", `output file, "-" for stdout`)
	reportCmd.AddCommand(reportMatrixCmd)
}

func runReportMatrix(cmd *cobra.Command, _ []string) error {
	kind, err := expiryreport.ParseKind(reportKind)
	if err != nil {
		return err
	}
	e, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	m, err := projections.QueryGetExpiryMatrix(cmd.Context(), projections.GetExpiryMatrixQuery{
		Filter: expiryreport.Filter{Year: reportYear, Region: strings.ToUpper(strings.TrimSpace(reportRegion))},
		Kind:   kind,
	}, projections.ReportDeps{Roster: firefighterStore.NewSQLiteStore(e.timed), Metrics: e.metrics})
	if err != nil {
		return err
	}
	if len(m.Rows) == 0 {
		return expiryreport.ErrNothingToExport
	}

	out := reportOut
	if out == "" {
		out = m.Filename("matrix")
	}
	if out == "-" {
		return m.WriteCSV(cmd.OutOrStdout())
	}
	if err := writeFile(out, m.WriteCSV); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d sites, %d expiries)\n", out, len(m.Rows), m.GrandTotal)
	return nil
}

// writeFile creates path and hands it to write, removing the file if write fails.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}
