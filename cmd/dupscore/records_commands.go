package main

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"dupscore/internal/config"
	"dupscore/internal/records"
)

func newRecordsCommand(ctx *commandContext) *cobra.Command {
	recordsCmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect and load the record store",
	}
	recordsCmd.AddCommand(newRecordsImportCommand(ctx))
	recordsCmd.AddCommand(newRecordsShowCommand(ctx))
	return recordsCmd
}

func newRecordsImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv|->",
		Short: "Load records from a CSV file with an sr_id header column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var src io.Reader
			if args[0] == "-" {
				src = cmd.InOrStdin()
			} else {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open %s: %w", args[0], err)
				}
				defer f.Close()
				src = f
			}
			return ctx.withStore(cmd.Context(), func(_ *config.Config, store records.Store) error {
				n, err := records.ImportCSV(cmd.Context(), store, src)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records into %s store\n", n, store.Name())
				return nil
			})
		},
	}
}

func newRecordsShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <sr_id>...",
		Short: "Show stored records",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd.Context(), func(_ *config.Config, store records.Store) error {
				found := make([]records.Record, 0, len(args))
				for _, id := range args {
					rec, err := records.Lookup(cmd.Context(), store, id)
					if err != nil {
						return err
					}
					found = append(found, *rec)
				}
				if jsonOutput {
					out := make([]map[string]*string, 0, len(found))
					for _, rec := range found {
						out = append(out, recordJSON(rec))
					}
					return writeJSON(cmd, out)
				}
				rows := make([][]string, 0, len(found))
				for _, rec := range found {
					rows = append(rows, []string{rec.ID, display(rec.Title), display(rec.Artists), display(rec.Contributors), display(rec.ISRCs)})
				}
				printTable(cmd.OutOrStdout(),
					[]string{"sr_id", "Title", "Artists", "Contributors", "ISRCs"}, rows, nil)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func recordJSON(rec records.Record) map[string]*string {
	id := rec.ID
	out := map[string]*string{records.ColumnID: &id}
	for _, column := range records.Columns {
		value, _ := rec.Field(column)
		if value.Valid {
			v := value.String
			out[column] = &v
		} else {
			out[column] = nil
		}
	}
	return out
}

func display(value sql.NullString) string {
	if !value.Valid {
		return "-"
	}
	if strings.TrimSpace(value.String) == "" {
		return `""`
	}
	return value.String
}
