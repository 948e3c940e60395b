package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bank-reconciliation-service/internal/auth"
	"bank-reconciliation-service/internal/database"
)

func newMigrateCommand() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:       "migrate <up|down|version>",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			// Creates the database on first use.
			db, err := database.NewConnection(cmd.Context(), cfg)
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			db.Close()

			status, err := database.RunMigration(cfg, args[0], steps)
			if err != nil {
				return err
			}
			if status == nil {
				return nil
			}
			if !status.Applied {
				fmt.Fprintln(cmd.OutOrStdout(), "No migrations have been applied yet")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Current migration version: %d (dirty: %v)\n", status.Version, status.Dirty)
			return nil
		},
	}

	cmd.Flags().IntVar(&steps, "steps", 0, "number of migration steps (0 means all)")

	return cmd
}

func newTokenCommand() *cobra.Command {
	var userID, companyID string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token for a user of a company",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			token, err := auth.GenerateToken(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, userID, companyID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "subject", "", "user id (required)")
	cmd.Flags().StringVar(&companyID, "company", "", "company id (required)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("subject")
	_ = cmd.MarkFlagRequired("company")

	return cmd
}
