package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/msalah0e/nodeweave/internal/scene"
)

const (
	appName           = "nodeweave"
	projectConfigName = ".nodeweave.toml"
)

var validate = validator.New()

// Config holds nodeweave configuration.
type Config struct {
	UI     UIConfig     `toml:"ui"`
	Log    LogConfig    `toml:"log"`
	Canvas CanvasConfig `toml:"canvas"`
	Node   NodeConfig   `toml:"node"`
	Edge   EdgeConfig   `toml:"edge"`
	Editor EditorConfig `toml:"editor"`
	Export ExportConfig `toml:"export"`
	Hooks  HooksConfig  `toml:"hooks"`
}

// UIConfig controls display options.
type UIConfig struct {
	Color bool `toml:"color"`
}

// LogConfig controls diagnostic logging on stderr.
type LogConfig struct {
	Level  string `toml:"level" validate:"oneof=debug info warn error"`
	Format string `toml:"format" validate:"oneof=console json"`
}

// CanvasConfig is the scene extent.
type CanvasConfig struct {
	Width  int `toml:"width" validate:"min=100"`
	Height int `toml:"height" validate:"min=100"`
}

// NodeConfig is the node geometry used for socket placement and hit tests.
type NodeConfig struct {
	Width         float64 `toml:"width" validate:"gt=0"`
	Height        float64 `toml:"height" validate:"gt=0"`
	TitleHeight   float64 `toml:"title_height" validate:"gte=0"`
	Padding       float64 `toml:"padding" validate:"gte=0"`
	EdgeSize      float64 `toml:"edge_size" validate:"gte=0"`
	SocketSpacing float64 `toml:"socket_spacing" validate:"gt=0"`
	SocketRadius  float64 `toml:"socket_radius" validate:"gt=0"`
}

// EdgeConfig controls edge shape.
type EdgeConfig struct {
	Roundness float64 `toml:"roundness" validate:"gte=0"`
	Kind      string  `toml:"kind" validate:"oneof=direct bezier"`
}

// EditorConfig controls undo and pointer handling.
type EditorConfig struct {
	HistoryLimit  int     `toml:"history_limit" validate:"min=1,max=1024"`
	DragThreshold float64 `toml:"drag_threshold" validate:"gte=0"`
}

// ExportConfig controls the export command.
type ExportConfig struct {
	Dir         string   `toml:"dir"`
	Formats     []string `toml:"formats" validate:"dive,oneof=json dot png"`
	Concurrency int      `toml:"concurrency" validate:"min=1,max=16"`
}

// HooksConfig defines lifecycle hook scripts.
type HooksConfig struct {
	PreSave    string `toml:"pre_save"`
	PostSave   string `toml:"post_save"`
	PostExport string `toml:"post_export"`
}

// Default returns the default configuration.
func Default() *Config {
	m := scene.DefaultMetrics()
	return &Config{
		UI:     UIConfig{Color: true},
		Log:    LogConfig{Level: "warn", Format: "console"},
		Canvas: CanvasConfig{Width: scene.DefaultWidth, Height: scene.DefaultHeight},
		Node: NodeConfig{
			Width:         m.Width,
			Height:        m.Height,
			TitleHeight:   m.TitleHeight,
			Padding:       m.Padding,
			EdgeSize:      m.EdgeSize,
			SocketSpacing: m.SocketSpacing,
			SocketRadius:  m.SocketRadius,
		},
		Edge:   EdgeConfig{Roundness: scene.DefaultRoundness, Kind: "bezier"},
		Editor: EditorConfig{HistoryLimit: 32, DragThreshold: 0},
		Export: ExportConfig{Dir: ".", Formats: []string{"json", "dot"}, Concurrency: 4},
	}
}

// Metrics converts the node section to scene geometry.
func (n NodeConfig) Metrics() scene.Metrics {
	m := scene.DefaultMetrics()
	m.Width = n.Width
	m.Height = n.Height
	m.TitleHeight = n.TitleHeight
	m.Padding = n.Padding
	m.EdgeSize = n.EdgeSize
	m.SocketSpacing = n.SocketSpacing
	m.SocketRadius = n.SocketRadius
	return m
}

// EdgeKind returns the configured default edge kind.
func (e EdgeConfig) EdgeKind() scene.EdgeKind {
	k, err := scene.ParseEdgeKind(e.Kind)
	if err != nil {
		return scene.Bezier
	}
	return k
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %s %s", strings.ToLower(fe.Namespace()), fe.Tag(), fe.Param()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ConfigDir returns the nodeweave config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName)
}

// Path returns the global config file path.
func Path() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the global config, then a .nodeweave.toml found in the working
// directory or any parent, then environment overrides. Unreadable files are
// skipped and defaults kept.
func Load() *Config {
	cfg := Default()

	if data, err := os.ReadFile(Path()); err == nil {
		_ = toml.Unmarshal(data, cfg)
	}
	if p := findProjectConfig(); p != "" {
		if data, err := os.ReadFile(p); err == nil {
			_ = toml.Unmarshal(data, cfg)
		}
	}
	cfg.ApplyEnv()
	return cfg
}

// LoadDotEnv loads .env from the working directory into the process
// environment without overriding variables already set.
func LoadDotEnv() error {
	err := godotenv.Load()
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// ApplyEnv overrides fields from NODEWEAVE_* variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("NODEWEAVE_LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := os.Getenv("NODEWEAVE_LOG_FORMAT"); v != "" {
		c.Log.Format = strings.ToLower(v)
	}
	if v := os.Getenv("NODEWEAVE_HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Editor.HistoryLimit = n
		}
	}
	if v := os.Getenv("NODEWEAVE_EDGE_KIND"); v != "" {
		c.Edge.Kind = strings.ToLower(v)
	}
	if os.Getenv("NO_COLOR") != "" {
		c.UI.Color = false
	}
}

// findProjectConfig walks up from the working directory looking for a
// project config file.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		p := filepath.Join(dir, projectConfigName)
		if _, err := os.Stat(p); err == nil {
			return p
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Save writes the config to disk.
func Save(cfg *Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// EnsureExists creates the config file with defaults if it doesn't exist.
func EnsureExists() error {
	if _, err := os.Stat(Path()); err == nil {
		return nil // already exists
	}
	return Save(Default())
}
