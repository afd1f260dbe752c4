package cmd

import (
	"context"
	"fmt"

	mio "github.com/kasuboski/medialink/pkg/io"
	"github.com/kasuboski/medialink/pkg/logger"
	"github.com/kasuboski/medialink/pkg/symlink"
	"go.uber.org/zap"

	"github.com/spf13/cobra"
)

// cleanupCmd sweeps dead links out of a destination folder
var cleanupCmd = &cobra.Command{
	Use:   "cleanup <destination>",
	Short: "remove dead symlinks and empty folders",
	Long:  `remove symlinks whose target is gone and the folders left empty by them`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()
		ctx := logger.WithCtx(context.Background(), log)

		res, err := symlink.New(&mio.MediaFileSystem{}).CleanupDeadSymlinks(ctx, args[0])
		if err != nil {
			log.Fatalw("failed to clean up", zap.String("destination", args[0]), zap.Error(err))
		}

		fmt.Printf("removed %d dead links and %d empty folders\n", res.Links, res.Directories)
	},
}

func init() {
	rootCmd.AddCommand(cleanupCmd)
}
