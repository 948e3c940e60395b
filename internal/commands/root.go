package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"bank-reconciliation-service/internal/config"
	"bank-reconciliation-service/internal/database"
	"bank-reconciliation-service/internal/logging"
	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/internal/services"
)

// options are shared by every subcommand.
type options struct {
	user string
}

// caller is the operator identity. It has no company, so the CLI can reach
// every account.
func (o *options) caller() models.Caller {
	return models.Caller{UserID: o.user}
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "reconctl",
		Short: "Bank statement import and reconciliation",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.user, "user", "", "user id recorded in the audit trail (default \"system\")")

	rootCmd.AddCommand(newImportCommand(opts))
	rootCmd.AddCommand(newAutoMatchCommand(opts))
	rootCmd.AddCommand(newTransactionsCommand(opts))
	rootCmd.AddCommand(newResolveCommand(opts))
	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newTokenCommand())

	return rootCmd
}

// loadConfig reads configuration and installs the configured logger on stderr.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	slog.SetDefault(logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format))
	return cfg, nil
}

// openContainer connects to the database and wires the services. The
// returned func closes the connection.
func openContainer(ctx context.Context) (*services.Container, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	db, err := database.NewConnection(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	return services.NewContainer(db, cfg), func() { db.Close() }, nil
}
