package cmd

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "medialink",
	Short: "medialink links media into a Plex style library",
	Long: `medialink watches source folders, identifies movies and episodes through TMDB
and keeps a library of symlinks named the way Plex expects.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file")
}

const (
	defaultPollInterval = time.Minute * 5
	defaultWorkers      = 8
)

func initConfig() {
	viper.SetConfigFile(cfgFile)

	viper.SetEnvPrefix("MEDIALINK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", ""))
	viper.AutomaticEnv()

	viper.SetDefault("tmdb.scheme", "https")
	viper.SetDefault("tmdb.host", "api.themoviedb.org")
	viper.SetDefault("tmdb.apiKey", "")
	viper.SetDefault("tmdb.backoff", 500*time.Millisecond)
	viper.SetDefault("tmdb.maxRetries", 3)

	viper.SetDefault("server.port", 8080)

	viper.SetDefault("library.extensions", []string{})

	viper.SetDefault("storage.filePath", "medialink.sqlite")

	viper.SetDefault("manager.pollInterval", defaultPollInterval)
	viper.SetDefault("manager.workers", defaultWorkers)
	viper.SetDefault("manager.cache.movie", 7*24*time.Hour)
	viper.SetDefault("manager.cache.show", 3*24*time.Hour)
	viper.SetDefault("manager.cache.season", 24*time.Hour)
	viper.SetDefault("manager.cache.episode", 6*time.Hour)
}
