package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"arff/internal/adapters/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Bring the database schema up to date and print its version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := setup(cmd.Context())
		if err != nil {
			return err
		}
		defer e.Close()

		v, err := storage.SchemaVersion(e.db)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: schema version %d\n", e.cfg.DBPath, v)
		return nil
	},
}
