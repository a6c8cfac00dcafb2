// Package config loads engine settings from an optional HCL file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/pokerequity/equity"
)

// DefaultPath is where the CLI looks for a config file when none is given.
const DefaultPath = "poker-equity.hcl"

// fileConfig mirrors the HCL layout:
//
//	engine {
//	  threshold        = 3000000
//	  trials           = 100000
//	  workers          = 8
//	  chunk_size       = 8192
//	  target_std_error = 0.001
//	  min_trials       = 10000
//	}
//
//	log {
//	  level = "info"
//	}
type fileConfig struct {
	Engine *engineBlock `hcl:"engine,block"`
	Log    *logBlock    `hcl:"log,block"`
}

type engineBlock struct {
	Threshold      *uint64  `hcl:"threshold,optional"`
	Trials         *int     `hcl:"trials,optional"`
	Workers        *int     `hcl:"workers,optional"`
	ChunkSize      *int     `hcl:"chunk_size,optional"`
	TargetStdError *float64 `hcl:"target_std_error,optional"`
	MinTrials      *int     `hcl:"min_trials,optional"`
}

type logBlock struct {
	Level string `hcl:"level,optional"`
}

// Config is the resolved configuration. Environment variables take
// precedence over the file, which takes precedence over the defaults.
type Config struct {
	Threshold      uint64  `env:"POKER_EQUITY_THRESHOLD"`
	Trials         int     `env:"POKER_EQUITY_TRIALS"`
	Workers        int     `env:"POKER_EQUITY_WORKERS"`
	ChunkSize      int     `env:"POKER_EQUITY_CHUNK_SIZE"`
	TargetStdError float64 `env:"POKER_EQUITY_TARGET_STD_ERROR"`
	MinTrials      int     `env:"POKER_EQUITY_MIN_TRIALS"`
	LogLevel       string  `env:"POKER_EQUITY_LOG_LEVEL"`
}

// Default returns the built-in configuration.
func Default() *Config {
	eng := equity.DefaultConfig()
	return &Config{
		Threshold:      eng.Threshold,
		Trials:         eng.Trials,
		Workers:        eng.Workers,
		ChunkSize:      eng.ChunkSize,
		TargetStdError: eng.TargetStdErr,
		MinTrials:      eng.MinTrials,
		LogLevel:       "info",
	}
}

// Load reads filename over the defaults, applies environment overrides and
// validates the result. A missing file is not an error.
func Load(filename string) (*Config, error) {
	cfg := Default()

	if filename != "" {
		if err := cfg.loadFile(filename); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(filename string) error {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if e := fc.Engine; e != nil {
		setIf(&c.Threshold, e.Threshold)
		setIf(&c.Trials, e.Trials)
		setIf(&c.Workers, e.Workers)
		setIf(&c.ChunkSize, e.ChunkSize)
		setIf(&c.TargetStdError, e.TargetStdError)
		setIf(&c.MinTrials, e.MinTrials)
	}
	if fc.Log != nil && fc.Log.Level != "" {
		c.LogLevel = fc.Log.Level
	}
	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Validate checks the engine settings and the log level.
func (c *Config) Validate() error {
	if err := c.Engine().Validate(); err != nil {
		return fmt.Errorf("invalid engine config: %w", err)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (log.Level, error) {
	lvl, err := log.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		return log.InfoLevel, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

// Engine converts the configuration into calculator settings.
func (c *Config) Engine() equity.Config {
	return equity.Config{
		Threshold:    c.Threshold,
		Trials:       c.Trials,
		Workers:      c.Workers,
		ChunkSize:    c.ChunkSize,
		TargetStdErr: c.TargetStdError,
		MinTrials:    c.MinTrials,
	}
}
