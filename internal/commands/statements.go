package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"bank-reconciliation-service/internal/services"
)

func newImportCommand(opts *options) *cobra.Command {
	var accountID int64
	var file string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a CSV bank statement into an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("opening statement: %w", err)
			}
			defer f.Close()

			container, closeDB, err := openContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			result, err := container.Imports.ImportStatement(cmd.Context(), opts.caller(), services.ImportRequest{
				AccountID: accountID,
				FileName:  filepath.Base(file),
				Content:   f,
			})
			if err != nil {
				return err
			}
			printImportResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().Int64Var(&accountID, "account", 0, "bank account id (required)")
	cmd.Flags().StringVar(&file, "file", "", "path to the statement file (required)")
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func printImportResult(w io.Writer, res *services.ImportResult) {
	fmt.Fprintf(w, "Batch %d (%s): imported %d of %d rows\n",
		res.Batch.ID, res.Batch.Status, res.Imported, res.TotalRows)
	for _, s := range res.Skipped {
		fmt.Fprintf(w, "  skipped line %d: %s\n", s.Line, s.Reason)
	}
}
