package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kasuboski/medialink/config"
	"github.com/kasuboski/medialink/pkg/library"
	"github.com/kasuboski/medialink/pkg/logger"
	"github.com/kasuboski/medialink/pkg/normalize"
	"go.uber.org/zap"

	"github.com/spf13/cobra"
)

var detectMediaType string

// detectCmd shows what a file name says about itself without touching
// storage or the provider
var detectCmd = &cobra.Command{
	Use:   "detect <path>...",
	Short: "show what a file name is detected as",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.Get()

		out := make([]map[string]any, 0, len(args))
		for _, path := range args {
			entry := map[string]any{"path": path}

			switch detectMediaType {
			case config.MediaTypeMovies:
				if hint, ok := library.DetectMovie(filepath.Base(path)); ok {
					entry["movie"] = hint
				}
			case config.MediaTypeTvShows:
				if hint, ok := library.DetectTvEpisode(path); ok {
					entry["episode"] = hint
					entry["normalized"] = normalize.Title(hint.TitleHint)
				}
			default:
				log.Fatalw("unsupported media type", zap.String("type", detectMediaType))
			}

			out = append(out, entry)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	},
}

func init() {
	detectCmd.Flags().StringVarP(&detectMediaType, "type", "t", config.MediaTypeMovies, "media type to detect as: Movies or TvShows")
	rootCmd.AddCommand(detectCmd)
}
