package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/kasuboski/medialink/pkg/logger"
	"github.com/spf13/viper"
)

// Provider serves the latest valid configuration and follows changes to the
// config file. A change that fails validation is logged and ignored.
type Provider struct {
	v *viper.Viper

	mu        sync.RWMutex
	current   Config
	listeners []func(Config)
}

// NewProvider reads and validates the configuration from v.
func NewProvider(v *viper.Viper) (*Provider, error) {
	c, err := New(v)
	if err != nil {
		return nil, err
	}

	if err := Validate(c); err != nil {
		return nil, err
	}

	return &Provider{v: v, current: c}, nil
}

// Current returns the configuration snapshot in effect.
func (p *Provider) Current() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// OnChange registers fn to be called with each accepted configuration.
func (p *Provider) OnChange(fn func(Config)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

// Watch starts following the config file, if one is in use.
func (p *Provider) Watch() {
	if p.v.ConfigFileUsed() == "" {
		return
	}

	p.v.OnConfigChange(p.handleChange)
	p.v.WatchConfig()
}

func (p *Provider) handleChange(e fsnotify.Event) {
	log := logger.Get().With("file", e.Name, "op", e.Op.String())

	var c Config
	if err := p.v.Unmarshal(&c); err != nil {
		log.Errorw("failed to reload configuration", "error", err)
		return
	}

	if err := Validate(c); err != nil {
		log.Errorw("ignoring invalid configuration", "error", err)
		return
	}

	p.mu.Lock()
	p.current = c
	listeners := append([]func(Config){}, p.listeners...)
	p.mu.Unlock()

	log.Infow("configuration reloaded", "mappings", len(c.Library.Mappings))
	for _, fn := range listeners {
		fn(c)
	}
}
