package cmd

import (
	"context"
	"fmt"

	"github.com/kasuboski/medialink/config"
	"github.com/kasuboski/medialink/pkg/logger"
	"go.uber.org/zap"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// migrateCmd applies the embedded schema migrations
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "apply database migrations",
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()
		ctx := logger.WithCtx(context.Background(), log)

		cfg, err := config.New(viper.GetViper())
		if err != nil {
			log.Fatalw("failed to read configurations", zap.Error(err))
		}

		store, err := openStorage(ctx, cfg)
		if err != nil {
			log.Fatalw("failed to migrate", zap.Error(err))
		}

		versioned, ok := store.(interface {
			GetMigrationVersion() (uint, bool, error)
		})
		if !ok {
			fmt.Println("migrations applied")
			return
		}

		version, dirty, err := versioned.GetMigrationVersion()
		if err != nil {
			log.Fatalw("failed to read migration version", zap.Error(err))
		}
		fmt.Printf("schema version %d (dirty=%t)\n", version, dirty)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
