package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/internal/services"
)

func newAutoMatchCommand(opts *options) *cobra.Command {
	var accountID int64

	cmd := &cobra.Command{
		Use:   "auto-match",
		Short: "Match pending transactions of an account against journal entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, closeDB, err := openContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			result, err := container.Reconciliation.AutoMatch(cmd.Context(), opts.caller(), accountID)
			if result != nil {
				printAutoMatchResult(cmd.OutOrStdout(), result)
			}
			return err
		},
	}

	cmd.Flags().Int64Var(&accountID, "account", 0, "bank account id (required)")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func printAutoMatchResult(w io.Writer, res *services.AutoMatchResult) {
	fmt.Fprintf(w, "Account %d: matched %d of %d pending transactions\n", res.AccountID, res.Matched, res.Attempted)
	for _, m := range res.Matches {
		fmt.Fprintf(w, "  transaction %d -> journal entry %d (diff %s, %d days)\n",
			m.TransactionID, m.JournalEntryID, m.AmountDifference.StringFixed(2), m.DayDifference)
	}
	for _, f := range res.Failures {
		fmt.Fprintf(w, "  FAILED transaction %d -> journal entry %d: %s\n", f.TransactionID, f.JournalEntryID, f.Error)
	}
}

func newTransactionsCommand(opts *options) *cobra.Command {
	var accountID, batchID int64
	var status string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List the bank transactions of an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var q services.TransactionQuery
			if status != "" {
				s, err := models.ParseTransactionStatus(status)
				if err != nil {
					return err
				}
				q.Status = s
			}
			q.BatchID, q.Limit, q.Offset = batchID, limit, offset

			container, closeDB, err := openContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			list, err := container.Transactions.List(cmd.Context(), opts.caller(), accountID, q)
			if err != nil {
				return err
			}
			return printTransactions(cmd.OutOrStdout(), list)
		},
	}

	cmd.Flags().Int64Var(&accountID, "account", 0, "bank account id (required)")
	cmd.Flags().Int64Var(&batchID, "batch", 0, "only transactions from this import batch")
	cmd.Flags().StringVar(&status, "status", "", "pending, matched, manual or ignored")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size (default from LIST_DEFAULT_LIMIT)")
	cmd.Flags().IntVar(&offset, "offset", 0, "rows to skip")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func printTransactions(w io.Writer, list []*models.BankTransaction) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tAMOUNT\tSTATUS\tJOURNAL ENTRY\tDESCRIPTION")
	for _, bt := range list {
		entry := "-"
		if bt.MatchedJournalEntryID.Valid {
			entry = fmt.Sprint(bt.MatchedJournalEntryID.Int64)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			bt.ID, bt.TransactionDate.Format(time.DateOnly), bt.Amount.StringFixed(2), bt.Status, entry, bt.Description)
	}
	return tw.Flush()
}

func newResolveCommand(opts *options) *cobra.Command {
	resolveCmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a pending transaction by hand",
	}
	resolveCmd.AddCommand(newResolveMatchCommand(opts))
	resolveCmd.AddCommand(newResolveIgnoreCommand(opts))
	return resolveCmd
}

func newResolveMatchCommand(opts *options) *cobra.Command {
	var transactionID, entryID int64

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Link a pending transaction to a journal entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, closeDB, err := openContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			bt, err := container.Resolution.ManualMatch(cmd.Context(), opts.caller(), transactionID, entryID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Transaction %d is %s (journal entry %d)\n", bt.ID, bt.Status, entryID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&transactionID, "transaction", 0, "bank transaction id (required)")
	cmd.Flags().Int64Var(&entryID, "entry", 0, "journal entry id (required)")
	_ = cmd.MarkFlagRequired("transaction")
	_ = cmd.MarkFlagRequired("entry")

	return cmd
}

func newResolveIgnoreCommand(opts *options) *cobra.Command {
	var transactionID int64

	cmd := &cobra.Command{
		Use:   "ignore",
		Short: "Exclude a pending transaction from reconciliation",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, closeDB, err := openContainer(cmd.Context())
			if err != nil {
				return err
			}
			defer closeDB()

			bt, err := container.Resolution.Ignore(cmd.Context(), opts.caller(), transactionID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Transaction %d is %s\n", bt.ID, bt.Status)
			return nil
		},
	}

	cmd.Flags().Int64Var(&transactionID, "transaction", 0, "bank transaction id (required)")
	_ = cmd.MarkFlagRequired("transaction")

	return cmd
}
