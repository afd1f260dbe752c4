package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/kasuboski/medialink/pkg/logger"
	"github.com/kasuboski/medialink/pkg/manager"
	"github.com/kasuboski/medialink/pkg/notify"
	"github.com/kasuboski/medialink/server"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spf13/cobra"
)

var allowedOrigins []string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "reconcile on a timer and serve the admin api",
	Long:  `reconcile on a timer and serve the admin api`,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logger.WithCtx(ctx, log)

		hub := notify.NewHub(notify.WithOriginPatterns(allowedOrigins...))
		e, err := newEngine(ctx, notify.Fanout{notify.Log{}, hub})
		if err != nil {
			log.Fatalw("failed to start", zap.Error(err))
		}
		defer e.Close()

		e.provider.Watch()

		poller := manager.NewPoller(manager.ReconcileTicks(e.manager), manager.PollInterval(e.provider), e.metrics)
		srv := server.New(log, e.manager, e.store, poller,
			server.WithEvents(hub),
			server.WithRegistry(e.metrics.Registry()),
		)

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return poller.Run(ctx)
		})
		g.Go(func() error {
			return srv.Serve(ctx, e.provider.Current().Server.Port)
		})

		if err := g.Wait(); err != nil {
			log.Errorw("server stopped", zap.Error(err))
		}
	},
}

func init() {
	serveCmd.Flags().StringSliceVar(&allowedOrigins, "allowed-origins", nil, "origin patterns allowed to open event websockets")
	rootCmd.AddCommand(serveCmd)
}
