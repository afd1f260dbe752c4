package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Media types a folder mapping can be classified as.
const (
	MediaTypeMovies  = "Movies"
	MediaTypeTvShows = "TvShows"
	MediaTypeExtras  = "Extras"
	MediaTypeUnknown = "Unknown"
)

type Config struct {
	TMDB    TMDB    `json:"tmdb" yaml:"tmdb" mapstructure:"tmdb"`
	Library Library `json:"library" yaml:"library" mapstructure:"library"`
	Storage Storage `json:"storage" yaml:"storage" mapstructure:"storage"`
	Server  Server  `json:"server" yaml:"server" mapstructure:"server"`
	Manager Manager `json:"manager" yaml:"manager" mapstructure:"manager"`
}

type TMDB struct {
	Scheme      string        `json:"scheme" yaml:"scheme" mapstructure:"scheme"`
	Host        string        `json:"host" yaml:"host" mapstructure:"host"`
	APIKey      string        `json:"apiKey" yaml:"apiKey" mapstructure:"apiKey"`
	BaseBackoff time.Duration `json:"backoff" yaml:"backoff" mapstructure:"backoff" validate:"gte=0"`
	MaxRetries  int           `json:"maxRetries" yaml:"maxRetries" mapstructure:"maxRetries" validate:"gte=0"`
}

type Server struct {
	Port int `json:"port" yaml:"port" mapstructure:"port" validate:"gte=0,lte=65535"`
}

// Library describes which source folders are reconciled into which
// destination folders.
type Library struct {
	Mappings   []FolderMapping `json:"mappings" yaml:"mappings" mapstructure:"mappings" validate:"dive"`
	Extensions []string        `json:"extensions" yaml:"extensions" mapstructure:"extensions"`
}

type FolderMapping struct {
	Source      string `json:"source" yaml:"source" mapstructure:"source" validate:"required"`
	Destination string `json:"destination" yaml:"destination" mapstructure:"destination" validate:"required"`
	MediaType   string `json:"mediaType" yaml:"mediaType" mapstructure:"mediaType" validate:"required,oneof=Movies TvShows Extras Unknown"`
}

// Storage configuration is assumed to be for sqlite database only currently
type Storage struct {
	FilePath string `json:"filePath" yaml:"filePath" mapstructure:"filePath" validate:"required"`
}

// Manager houses configuration related to the manager and reconciliation
type Manager struct {
	PollInterval time.Duration `json:"pollInterval" yaml:"pollInterval" mapstructure:"pollInterval" validate:"gt=0"`
	Workers      int           `json:"workers" yaml:"workers" mapstructure:"workers" validate:"gte=1"`
	Cache        CacheTTL      `json:"cache" yaml:"cache" mapstructure:"cache"`
}

// CacheTTL is how long provider responses are kept per lookup kind.
type CacheTTL struct {
	Movie   time.Duration `json:"movie" yaml:"movie" mapstructure:"movie" validate:"gte=0"`
	Show    time.Duration `json:"show" yaml:"show" mapstructure:"show" validate:"gte=0"`
	Season  time.Duration `json:"season" yaml:"season" mapstructure:"season" validate:"gte=0"`
	Episode time.Duration `json:"episode" yaml:"episode" mapstructure:"episode" validate:"gte=0"`
}

type ConfigUnmarshaler interface {
	ReadInConfig() error
	Unmarshal(any, ...viper.DecoderConfigOption) error
	ConfigFileUsed() string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// New reads a new configuration
func New(cu ConfigUnmarshaler) (Config, error) {
	var c Config

	if cu.ConfigFileUsed() != "" {
		err := cu.ReadInConfig()
		if err != nil {
			return c, err
		}
	}

	err := cu.Unmarshal(&c)
	return c, err
}

// Validate checks the configuration for values the engine cannot run with.
func Validate(c Config) error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
