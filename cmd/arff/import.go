package main

import (
	"fmt"
	"os"
	"os/user"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	firefighterStore "arff/internal/adapters/storage/firefighter"
	"arff/internal/application/orchestrators"
)

var (
	importFile   string
	importDryRun bool
	importUpdate bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load a roster CSV into the database",
	Long: `Reads a roster spreadsheet export (comma or semicolon delimited) and creates a
firefighter per row. Rows are matched to existing firefighters by tax id; matches are
skipped unless --update is given. --dry-run validates every row and writes nothing.`,
	Args: cobra.NoArgs,
	RunE: runImport,
}

func init() {
	f := importCmd.Flags()
	f.StringVar(&importFile, "file", "", "roster CSV file")
	f.BoolVar(&importDryRun, "dry-run", false, "validate without writing")
	f.BoolVar(&importUpdate, "update", false, "overwrite firefighters matched by tax id")
	_ = importCmd.MarkFlagRequired("file")
}

func runImport(cmd *cobra.Command, _ []string) error {
	src, err := os.Open(importFile)
	if err != nil {
		return err
	}
	defer src.Close()

	e, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	res, err := orchestrators.ExecuteImportFirefighters(cmd.Context(), orchestrators.ImportFirefightersInput{
		Reader:     src,
		ImportedBy: operator(),
		DryRun:     importDryRun,
		UpdateMode: importUpdate,
	}, orchestrators.ImportFirefightersDeps{
		Store:      firefighterStore.NewSQLiteStore(e.timed),
		GenerateID: uuid.NewString,
	})
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "rows %d: created %d, updated %d, skipped %d, rejected %d\n",
		res.Total, res.Created, res.Updated, res.Skipped, len(res.Errors))
	for _, re := range res.Errors {
		fmt.Fprintf(w, "  row %d: %s\n", re.Row, re.Message)
	}
	if len(res.Unknown) > 0 {
		fmt.Fprintf(w, "ignored columns: %v\n", res.Unknown)
	}
	if res.DryRun {
		fmt.Fprintln(w, "dry run: nothing written")
	}
	return nil
}

// operator names who ran a CLI task in the audit log.
func operator() string {
	if u, err := user.Current(); err == nil {
		return "cli:" + u.Username
	}
	return "cli"
}
