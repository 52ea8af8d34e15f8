// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package csp

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Config is the file form of scheduler settings.
//
//	name = "sieve"
//	seed = 42          # select tie-break seed; 0 picks a random seed
//	log_level = "debug"
type Config struct {
	Name     string `toml:"name"`
	Seed     uint64 `toml:"seed"`
	LogLevel string `toml:"log_level"`
}

// LoadConfig parses a TOML scheduler configuration.
func LoadConfig(data []byte) (Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("csp: parse config: %w", err)
	}
	if cfg.LogLevel != "" {
		if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
			return Config{}, fmt.Errorf("csp: parse config: %w", err)
		}
	}
	return cfg, nil
}

// LoadConfigFile reads and parses the TOML file at path.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("csp: read config: %w", err)
	}
	return LoadConfig(data)
}

// Option configures a Scheduler.
type Option func(*options)

type options struct {
	name       string
	seed       uint64
	level      string
	log        *logrus.Logger
	registerer prometheus.Registerer
}

// logger returns the configured logger. A log level from a Config applies
// only to the scheduler's own logger, never to one passed via WithLogger.
func (o *options) logger() *logrus.Logger {
	if o.log != nil {
		return o.log
	}
	if o.level == "" {
		return logrus.StandardLogger()
	}
	l := logrus.New()
	if lvl, err := logrus.ParseLevel(o.level); err == nil {
		l.SetLevel(lvl)
	}
	return l
}

// WithConfig applies cfg. Options after it override its fields.
func WithConfig(cfg Config) Option {
	return func(o *options) {
		o.name = cfg.Name
		o.seed = cfg.Seed
		o.level = cfg.LogLevel
	}
}

// WithSeed fixes the seed of the select tie-break generator, making runs
// reproducible.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.seed = seed }
}

// WithLogger sets the logger. The default is logrus.StandardLogger().
func WithLogger(l *logrus.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithRegisterer registers the scheduler's metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}
