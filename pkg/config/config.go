// Package config loads barswitch settings from a .barswitch file, the
// environment and defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"tableflip.dev/barswitch/pkg/logging"
	"tableflip.dev/barswitch/pkg/tree"
)

// DefaultBarTitle names the bar created when none exists yet.
const DefaultBarTitle = "My first bookmark bar"

var envReplacer = strings.NewReplacer(".", "_")

// Config is the resolved configuration.
type Config struct {
	// Path is the data directory; the local tier lives in Path/local.
	Path string
	// SyncPath holds the synchronized tier.
	SyncPath string
	// TreePath is the SQLite bookmark tree.
	TreePath string

	Vendor          tree.Vendor
	OtherItemsIndex int
	RootTitle       string
	DefaultTitle    string

	ShortcutDelay    time.Duration
	Workspaces       bool
	SyncWritesPerMin int
	Log              logging.Config
	ConfigFileUsed   string
}

// LocalPath is the directory of the local tier.
func (c *Config) LocalPath() string {
	return filepath.Join(c.Path, "local")
}

// Load reads .barswitch.yaml from BARSWITCH_CONFIG_PATH or the working
// directory, applies BARSWITCH_* environment overrides and fills defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("path", "~/.barswitch")
	v.SetDefault("sync_path", "")
	v.SetDefault("tree_path", "")
	v.SetDefault("host.vendor", string(tree.VendorChromium))
	v.SetDefault("host.other_items_index", 0)
	v.SetDefault("root_title", tree.DefaultRootTitle)
	v.SetDefault("default_title", DefaultBarTitle)
	v.SetDefault("shortcut.delay", "100ms")
	v.SetDefault("workspaces.enabled", false)
	v.SetDefault("sync.writes_per_minute", 120)
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")

	v.SetConfigName(".barswitch") // .yaml is implicit
	v.SetEnvPrefix("BARSWITCH")
	v.SetEnvKeyReplacer(envReplacer)
	v.AutomaticEnv()

	if override := os.Getenv("BARSWITCH_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	base, err := homedir.Expand(v.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("config: expand path: %w", err)
	}
	cfg := &Config{
		Path:             base,
		SyncPath:         filepath.Join(base, "sync"),
		TreePath:         filepath.Join(base, "bookmarks.db"),
		OtherItemsIndex:  v.GetInt("host.other_items_index"),
		RootTitle:        v.GetString("root_title"),
		DefaultTitle:     v.GetString("default_title"),
		ShortcutDelay:    v.GetDuration("shortcut.delay"),
		Workspaces:       v.GetBool("workspaces.enabled"),
		SyncWritesPerMin: v.GetInt("sync.writes_per_minute"),
		Log: logging.Config{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		ConfigFileUsed: v.ConfigFileUsed(),
	}
	if p := v.GetString("sync_path"); p != "" {
		if cfg.SyncPath, err = homedir.Expand(p); err != nil {
			return nil, fmt.Errorf("config: expand sync_path: %w", err)
		}
	}
	if p := v.GetString("tree_path"); p != "" {
		if cfg.TreePath, err = homedir.Expand(p); err != nil {
			return nil, fmt.Errorf("config: expand tree_path: %w", err)
		}
	}
	if cfg.Vendor, err = tree.ParseVendor(v.GetString("host.vendor")); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if cfg.ShortcutDelay <= 0 {
		cfg.ShortcutDelay = 100 * time.Millisecond
	}
	if cfg.DefaultTitle == "" {
		cfg.DefaultTitle = DefaultBarTitle
	}
	return cfg, nil
}
