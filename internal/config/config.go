// Package config loads the server configuration: an optional HCL file,
// then an optional .env file, then LASTCARD_* environment variables. Command
// line flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"
	"github.com/lox/lastcard/internal/deck"
	"github.com/lox/lastcard/internal/game"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "LASTCARD_"

// Config is the complete server configuration
type Config struct {
	Server ServerSettings
	Rules  RuleSettings
	Tables []TableSettings
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	Monitor  bool   `hcl:"monitor,optional"`
}

// RuleSettings tunes the match clock and the deal
type RuleSettings struct {
	TurnSeconds   int `hcl:"turn_seconds,optional"`
	SettleMillis  int `hcl:"settle_ms,optional"`
	OpeningMillis int `hcl:"opening_ms,optional"`
	HandSize      int `hcl:"hand_size,optional"`
}

// TableSettings defines a table that seats players in join order and starts a
// match once full
type TableSettings struct {
	Name  string `hcl:"name,label"`
	Seats int    `hcl:"seats,optional"`
}

// file mirrors the HCL layout; blocks are pointers so that they can be left out
type file struct {
	Server *ServerSettings `hcl:"server,block"`
	Rules  *fileRules      `hcl:"rules,block"`
	Tables []TableSettings `hcl:"table,block"`
}

// fileRules keeps an explicit zero apart from an absent attribute
type fileRules struct {
	TurnSeconds   *int `hcl:"turn_seconds,optional"`
	SettleMillis  *int `hcl:"settle_ms,optional"`
	OpeningMillis *int `hcl:"opening_ms,optional"`
	HandSize      *int `hcl:"hand_size,optional"`
}

// overrides are read from the environment
type overrides struct {
	Address     string `env:"ADDRESS"`
	Port        int    `env:"PORT"`
	LogLevel    string `env:"LOG_LEVEL"`
	Monitor     *bool  `env:"MONITOR"`
	TurnSeconds int    `env:"TURN_SECONDS"`
}

const defaultSeats = 4

// Default returns the configuration used when no file is given
func Default() *Config {
	timing := game.DefaultTiming()
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Rules: RuleSettings{
			TurnSeconds:   int(timing.Turn / time.Second),
			SettleMillis:  int(timing.Settle / time.Millisecond),
			OpeningMillis: int(timing.Opening / time.Millisecond),
			HandSize:      game.DefaultHandSize,
		},
		Tables: []TableSettings{
			{Name: "main", Seats: defaultSeats},
		},
	}
}

// Load reads path (if it exists), then envFile (if non-empty and present),
// then the environment. The result is not validated.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := cfg.loadFile(path); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("failed to load env file: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var raw file
	diags = gohcl.DecodeBody(f.Body, nil, &raw)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply file values over defaults
	if s := raw.Server; s != nil {
		if s.Address != "" {
			c.Server.Address = s.Address
		}
		if s.Port != 0 {
			c.Server.Port = s.Port
		}
		if s.LogLevel != "" {
			c.Server.LogLevel = s.LogLevel
		}
		c.Server.Monitor = s.Monitor
	}
	if r := raw.Rules; r != nil {
		setInt(&c.Rules.TurnSeconds, r.TurnSeconds)
		setInt(&c.Rules.SettleMillis, r.SettleMillis)
		setInt(&c.Rules.OpeningMillis, r.OpeningMillis)
		setInt(&c.Rules.HandSize, r.HandSize)
	}
	if len(raw.Tables) > 0 {
		c.Tables = raw.Tables
		for i := range c.Tables {
			if c.Tables[i].Seats == 0 {
				c.Tables[i].Seats = defaultSeats
			}
		}
	}
	return nil
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func (c *Config) applyEnv() error {
	var ov overrides
	if err := env.ParseWithOptions(&ov, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if ov.Address != "" {
		c.Server.Address = ov.Address
	}
	if ov.Port != 0 {
		c.Server.Port = ov.Port
	}
	if ov.LogLevel != "" {
		c.Server.LogLevel = ov.LogLevel
	}
	if ov.Monitor != nil {
		c.Server.Monitor = *ov.Monitor
	}
	if ov.TurnSeconds != 0 {
		c.Rules.TurnSeconds = ov.TurnSeconds
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q", c.Server.LogLevel)
	}

	if c.Rules.TurnSeconds < 1 {
		return fmt.Errorf("turn_seconds must be positive, got %d", c.Rules.TurnSeconds)
	}
	if c.Rules.SettleMillis < 0 || c.Rules.OpeningMillis < 0 {
		return fmt.Errorf("settle_ms and opening_ms cannot be negative")
	}
	if c.Rules.HandSize < 1 {
		return fmt.Errorf("hand_size must be positive, got %d", c.Rules.HandSize)
	}

	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}
	names := make(map[string]bool, len(c.Tables))
	for _, table := range c.Tables {
		if names[table.Name] {
			return fmt.Errorf("duplicate table %q", table.Name)
		}
		names[table.Name] = true
		if table.Seats < game.MinSeats || table.Seats > game.MaxSeats {
			return fmt.Errorf("table %s: seats must be between %d and %d", table.Name, game.MinSeats, game.MaxSeats)
		}
		if table.Seats*c.Rules.HandSize >= deck.Size {
			return fmt.Errorf("table %s: cannot deal %d cards to %d seats", table.Name, c.Rules.HandSize, table.Seats)
		}
	}
	return nil
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// Level returns the configured log level, defaulting to info
func (c *Config) Level() log.Level {
	level, err := log.ParseLevel(c.Server.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// Timing converts the rules block to the match clock
func (c *Config) Timing() game.Timing {
	return game.Timing{
		Turn:    time.Duration(c.Rules.TurnSeconds) * time.Second,
		Settle:  time.Duration(c.Rules.SettleMillis) * time.Millisecond,
		Opening: time.Duration(c.Rules.OpeningMillis) * time.Millisecond,
	}
}

// Table returns a table by name
func (c *Config) Table(name string) (TableSettings, bool) {
	for _, table := range c.Tables {
		if table.Name == name {
			return table, true
		}
	}
	return TableSettings{}, false
}
