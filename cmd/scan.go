package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/kasuboski/medialink/pkg/logger"
	"github.com/kasuboski/medialink/pkg/notify"
	"go.uber.org/zap"

	"github.com/spf13/cobra"
)

// scanCmd runs a single reconciliation tick
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "run one reconciliation pass and exit",
	Long:  `run one reconciliation pass over every folder mapping, then resync rows that are due`,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()
		ctx := logger.WithCtx(context.Background(), log)

		e, err := newEngine(ctx, notify.Log{})
		if err != nil {
			log.Fatalw("failed to start", zap.Error(err))
		}
		defer e.Close()

		summary, err := e.manager.Reconcile(ctx)
		if err != nil {
			log.Fatalw("failed to reconcile", zap.Error(err))
		}

		for _, m := range summary.Mappings {
			if m.Skipped {
				fmt.Printf("%s: skipped, source unavailable\n", m.Source)
				continue
			}
			fmt.Printf("%s: %s new, %s resumed, %s removed, %s dead links, %s failures\n",
				m.Source,
				humanize.Comma(int64(m.Untracked)),
				humanize.Comma(int64(m.Resumed)),
				humanize.Comma(m.Removed),
				humanize.Comma(int64(m.DeadLinks)),
				humanize.Comma(int64(m.Failures)))
		}
		fmt.Printf("resynced %s files in %s (started %s)\n",
			humanize.Comma(int64(summary.Resynced)),
			summary.Duration.Round(time.Millisecond),
			humanize.Time(summary.Started))
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
