// Package config loads session and transport settings from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Session holds the simulation-facing knobs.
type Session struct {
	NumPlayers    int `yaml:"num_players"`
	InputSize     int `yaml:"input_size"`
	FrameDelay    int `yaml:"frame_delay"`
	MaxPrediction int `yaml:"max_prediction"`
	CheckDistance int `yaml:"check_distance"`
}

// Transport holds the peer connection settings.
type Transport struct {
	Listen          string   `yaml:"listen"`
	Peers           []string `yaml:"peers"`
	ProtocolVersion string   `yaml:"protocol_version"`
}

// Recording holds the frame journal settings. An empty path disables
// recording.
type Recording struct {
	Path string `yaml:"path"`
}

// Config is the top-level configuration document.
type Config struct {
	Session   Session   `yaml:"session"`
	Transport Transport `yaml:"transport"`
	Recording Recording `yaml:"recording"`
}

// Default returns the configuration used when no file is provided.
func Default() Config {
	return Config{
		Session: Session{
			NumPlayers:    2,
			InputSize:     4,
			FrameDelay:    0,
			MaxPrediction: 8,
			CheckDistance: 0,
		},
		Transport: Transport{
			Listen:          ":9460",
			ProtocolVersion: "1",
		},
	}
}

// Load reads path, fills unset fields from Default, and validates the
// result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML document, fills unset fields from Default, and
// validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.sanitize()
	if err := cfg.Verify(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// sanitize backfills fields a partial document left at their zero value
// where a zero value is not meaningful.
func (c *Config) sanitize() {
	def := Default()
	if c.Session.NumPlayers == 0 {
		c.Session.NumPlayers = def.Session.NumPlayers
	}
	if c.Session.InputSize == 0 {
		c.Session.InputSize = def.Session.InputSize
	}
	if c.Session.MaxPrediction == 0 {
		c.Session.MaxPrediction = def.Session.MaxPrediction
	}
	if c.Transport.Listen == "" {
		c.Transport.Listen = def.Transport.Listen
	}
	if c.Transport.ProtocolVersion == "" {
		c.Transport.ProtocolVersion = def.Transport.ProtocolVersion
	}
}

// Verify reports the first invalid setting.
func (c Config) Verify() error {
	if c.Session.NumPlayers < 1 {
		return fmt.Errorf("config: num_players must be at least 1, got %d", c.Session.NumPlayers)
	}
	if c.Session.InputSize < 1 {
		return fmt.Errorf("config: input_size must be at least 1, got %d", c.Session.InputSize)
	}
	if c.Session.FrameDelay < 0 {
		return fmt.Errorf("config: frame_delay must not be negative, got %d", c.Session.FrameDelay)
	}
	if c.Session.MaxPrediction < 1 {
		return fmt.Errorf("config: max_prediction must be at least 1, got %d", c.Session.MaxPrediction)
	}
	if c.Session.CheckDistance < 0 {
		return fmt.Errorf("config: check_distance must not be negative, got %d", c.Session.CheckDistance)
	}
	return nil
}
