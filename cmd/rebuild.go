package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kasuboski/medialink/pkg/logger"
	"github.com/kasuboski/medialink/pkg/notify"
	"go.uber.org/zap"

	"github.com/spf13/cobra"
)

// rebuildCmd deletes and reprocesses every file of one show
var rebuildCmd = &cobra.Command{
	Use:   "rebuild <tmdb-id>",
	Short: "rebuild every link of a tv show",
	Long:  `remove the links and ledger rows of a tv show, drop its cached metadata and process its files again`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()
		ctx := logger.WithCtx(context.Background(), log)

		tmdbID, err := strconv.ParseInt(args[0], 10, 32)
		if err != nil {
			log.Fatalw("invalid tmdb id", zap.String("id", args[0]))
		}

		e, err := newEngine(ctx, notify.Log{})
		if err != nil {
			log.Fatalw("failed to start", zap.Error(err))
		}
		defer e.Close()

		summary, err := e.manager.RebuildTvShow(ctx, int32(tmdbID))
		if err != nil {
			log.Fatalw("failed to rebuild show", zap.Error(err))
		}

		fmt.Printf("removed %d files, reprocessed %d, dropped %d cache entries\n",
			summary.Removed, summary.Reprocessed, summary.Invalidated)
	},
}

func init() {
	rootCmd.AddCommand(rebuildCmd)
}
