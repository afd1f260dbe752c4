package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/kasuboski/medialink/pkg/logger"
	"github.com/kasuboski/medialink/pkg/notify"
	"github.com/kasuboski/medialink/pkg/storage"
	"go.uber.org/zap"

	"github.com/spf13/cobra"
)

var (
	resyncTmdbID  int32
	resyncSeason  int32
	resyncEpisode int32
)

// resyncCmd relinks tracked files from their stored metadata
var resyncCmd = &cobra.Command{
	Use:   "resync [id]",
	Short: "relink files whose metadata changed",
	Long: `without an id every file due for resync is relinked. With an id that file is
marked due, optionally rebound to a new tmdb id, season or episode, and relinked.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()
		ctx := logger.WithCtx(context.Background(), log)

		e, err := newEngine(ctx, notify.Log{})
		if err != nil {
			log.Fatalw("failed to start", zap.Error(err))
		}
		defer e.Close()

		if len(args) == 0 {
			n, err := e.manager.ResyncDue(ctx)
			if err != nil {
				log.Fatalw("failed to resync", zap.Error(err))
			}
			fmt.Printf("resynced %d files\n", n)
			return
		}

		id, err := strconv.ParseInt(args[0], 10, 32)
		if err != nil {
			log.Fatalw("invalid id", zap.String("id", args[0]))
		}

		var req storage.ResyncRequest
		if cmd.Flags().Changed("tmdb-id") {
			req.TmdbID = &resyncTmdbID
		}
		if cmd.Flags().Changed("season") {
			req.SeasonNumber = &resyncSeason
		}
		if cmd.Flags().Changed("episode") {
			req.EpisodeNumber = &resyncEpisode
		}

		file, err := e.manager.ResyncFile(ctx, int32(id), req)
		if err != nil {
			log.Fatalw("failed to resync file", zap.Int64("id", id), zap.Error(err))
		}

		dest := "-"
		if file.DestFile != nil {
			dest = *file.DestFile
		}
		fmt.Printf("%d %s %s\n", file.ID, file.Status, dest)
	},
}

func init() {
	resyncCmd.Flags().Int32Var(&resyncTmdbID, "tmdb-id", 0, "rebind the file to this tmdb id")
	resyncCmd.Flags().Int32Var(&resyncSeason, "season", 0, "rebind the file to this season")
	resyncCmd.Flags().Int32Var(&resyncEpisode, "episode", 0, "rebind the file to this episode")
	rootCmd.AddCommand(resyncCmd)
}
