package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"traderoute/internal/world"
)

// ErrInvalidConfig is returned by Validate for out-of-range settings
var ErrInvalidConfig = errors.New("invalid config")

// RenderConfig controls the optional loop map
type RenderConfig struct {
	Enabled bool   `yaml:"enabled"`
	Output  string `yaml:"output"` // .dot, .png, or "sixel" for the terminal
	Width   int    `yaml:"width"`  // sixel width in pixels, 0 keeps the rendered size
	Dither  bool   `yaml:"dither"`
	Routes  int    `yaml:"routes"` // loops drawn from the top of the ranking
}

// Config holds application settings. Zero values in a YAML file leave the
// defaults in place only for fields the file does not mention.
type Config struct {
	Database string `yaml:"database"`
	LogFile  string `yaml:"log_file"`
	LogLevel string `yaml:"log_level"` // debug, info, warn, error

	MaxPorts  int      `yaml:"max_ports"`
	NumRoutes int      `yaml:"num_routes"`
	Focus     int      `yaml:"focus"` // -1 = no focus sector
	Workers   int      `yaml:"workers"`
	OneWay    bool     `yaml:"one_way"`
	Ranking   string   `yaml:"ranking"` // experience or money
	Goods     []string `yaml:"goods"`   // empty = every good
	Races     []int    `yaml:"races"`   // empty = every race of the world

	ConnectionTurns int `yaml:"connection_turns"`
	WarpTurns       int `yaml:"warp_turns"`
	MaxDistance     int `yaml:"max_distance"` // 0 = unlimited

	Locale string `yaml:"locale"` // BCP 47 tag used for report numbers

	Render RenderConfig `yaml:"render"`
}

// Default returns a Config with the settings used when no file is given
func Default() *Config {
	return &Config{
		Database:        "world.db",
		LogLevel:        "info",
		MaxPorts:        2,
		NumRoutes:       100,
		Focus:           -1,
		Workers:         0,
		Ranking:         "experience",
		ConnectionTurns: 1,
		WarpTurns:       5,
		Locale:          "en",
		Render: RenderConfig{
			Output: "routes.png",
			Routes: 5,
		},
	}
}

// Load reads a YAML config file on top of the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and names
func (c *Config) Validate() error {
	if c.MaxPorts < 1 {
		return fmt.Errorf("%w: max_ports must be at least 1", ErrInvalidConfig)
	}
	if c.NumRoutes < 0 {
		return fmt.Errorf("%w: num_routes must not be negative", ErrInvalidConfig)
	}
	if c.Focus < -1 {
		return fmt.Errorf("%w: focus must be a sector id or -1", ErrInvalidConfig)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalidConfig)
	}
	if c.Ranking != "experience" && c.Ranking != "money" {
		return fmt.Errorf("%w: unknown ranking %q", ErrInvalidConfig, c.Ranking)
	}
	if c.ConnectionTurns < 1 || c.WarpTurns < 1 {
		return fmt.Errorf("%w: move costs must be at least one turn", ErrInvalidConfig)
	}
	if c.MaxDistance < 0 {
		return fmt.Errorf("%w: max_distance must not be negative", ErrInvalidConfig)
	}
	for _, name := range c.Goods {
		if _, ok := world.GoodByName(name); !ok {
			return fmt.Errorf("%w: unknown good %q", ErrInvalidConfig, name)
		}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}

// GoodsMap returns the enabled goods. An empty list enables every good.
func (c *Config) GoodsMap() map[world.Good]bool {
	if len(c.Goods) == 0 {
		return world.AllGoods()
	}
	goods := make(map[world.Good]bool, len(world.Goods()))
	for _, g := range world.Goods() {
		goods[g] = false
	}
	for _, name := range c.Goods {
		if g, ok := world.GoodByName(name); ok {
			goods[g] = true
		}
	}
	return goods
}

// RacesMap returns the permitted races for w. Every race of the world gets an
// entry so races left out of the list are skipped without a warning.
func (c *Config) RacesMap(w *world.World) map[int]bool {
	races := w.AllRaces()
	if len(c.Races) == 0 {
		return races
	}
	for id := range races {
		races[id] = false
	}
	for _, id := range c.Races {
		races[id] = true
	}
	return races
}

// DistanceOptions returns the move costs used to compute distances
func (c *Config) DistanceOptions() world.DistanceOptions {
	return world.DistanceOptions{
		ConnectionTurns: c.ConnectionTurns,
		WarpTurns:       c.WarpTurns,
		MaxTurns:        c.MaxDistance,
	}
}
