package cmd

import (
	"fmt"

	"github.com/ariebrainware/medibook/config"
	"github.com/ariebrainware/medibook/model"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openMigrated()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %d tables on %s\n", len(model.Models()), db.Dialector.Name())
			return nil
		},
	}
}

// openMigrated connects to the configured database and brings its schema up to date.
func openMigrated() (*gorm.DB, error) {
	cfg := config.LoadConfig()
	logger, err := setupLogger(cfg)
	if err != nil {
		return nil, err
	}
	defer func() { _ = logger.Sync() }()

	db, err := config.ConnectDatabase()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := model.Migrate(db); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("schema migrated", zap.String("driver", db.Dialector.Name()))
	return db, nil
}
