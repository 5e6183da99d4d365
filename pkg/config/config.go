// Package config layers the songbook configuration: built-in defaults,
// then an optional YAML file, then environment variables, then command
// line flags. Later layers win.
package config

import (
	"flag"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

const (
	DefaultPort     = 8080
	DefaultHost     = "localhost"
	DefaultWebRoot  = "web"
	DefaultDataRoot = "data"
)

type Config struct {
	Server struct {
		Address string `yaml:"address"`
		Port    int    `yaml:"port"`
	} `yaml:"server"`
	Storage struct {
		DataRoot  string `yaml:"data_root"`
		SongsRoot string `yaml:"songs_root"`
		WebRoot   string `yaml:"web_root"`
	} `yaml:"storage"`
	Index struct {
		Path        string `yaml:"path"`
		RebuildCron string `yaml:"rebuild_cron"`
	} `yaml:"index"`
	Security struct {
		RateLimit struct {
			RPS   float64 `yaml:"rps"`
			Burst int     `yaml:"burst"`
		} `yaml:"rate_limit"`
	} `yaml:"security"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"` // text|json
	} `yaml:"logging"`
}

// Default returns the built-in configuration.
func Default() *Config {
	c := &Config{}
	c.Server.Address = DefaultHost
	c.Server.Port = DefaultPort
	c.Storage.DataRoot = DefaultDataRoot
	c.Storage.WebRoot = DefaultWebRoot
	return c
}

// Load builds the effective configuration from the optional YAML file at
// path and the environment.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	c.applyEnv()
	return c, nil
}

// applyEnv honors both the songbook's own variables and the legacy names
// (HOST, PORT, DATA_ROOT, SONGS_ROOT, WEB_ROOT) existing deployments use.
func (c *Config) applyEnv() {
	if v := firstEnv("SONGBOOK_HOST", "HOST", "HOSTNAME"); v != "" {
		c.Server.Address = v
	}
	if v := firstEnv("SONGBOOK_PORT", "PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := firstEnv("SONGBOOK_DATA_ROOT", "DATA_ROOT"); v != "" {
		c.Storage.DataRoot = v
	}
	if v := firstEnv("SONGBOOK_SONGS_ROOT", "SONGS_ROOT"); v != "" {
		c.Storage.SongsRoot = v
	}
	if v := firstEnv("SONGBOOK_WEB_ROOT", "WEB_ROOT"); v != "" {
		c.Storage.WebRoot = v
	}
	if v := os.Getenv("SONGBOOK_REBUILD_CRON"); v != "" {
		c.Index.RebuildCron = v
	}
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

// Addr returns the host:port the HTTP server binds.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Address, strconv.Itoa(c.Server.Port))
}

// SongsPath returns the songs directory, defaulting under the data root.
func (c *Config) SongsPath() string {
	if c.Storage.SongsRoot != "" {
		return c.Storage.SongsRoot
	}
	return filepath.Join(c.Storage.DataRoot, "songs")
}

// IndexPath returns the search index directory, defaulting under the
// data root.
func (c *Config) IndexPath() string {
	if c.Index.Path != "" {
		return c.Index.Path
	}
	return filepath.Join(c.Storage.DataRoot, "index")
}

// Flags is the result of command line parsing; Set records which flags
// the user supplied explicitly so they can win over file and env values.
type Flags struct {
	Addr     string
	DataRoot string
	Config   string
	Set      map[string]bool
}

// ParseFlags parses the process flags.
func ParseFlags() Flags {
	addr := flag.String("addr", "", "listen address (host:port)")
	data := flag.String("data", "", "data root directory")
	cfg := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	f := Flags{Addr: *addr, DataRoot: *data, Config: *cfg, Set: map[string]bool{}}
	flag.Visit(func(fl *flag.Flag) { f.Set[fl.Name] = true })
	return f
}

// Apply overlays explicitly set flags onto the config.
func (f Flags) Apply(c *Config) {
	if f.Set["addr"] {
		if host, port, err := net.SplitHostPort(f.Addr); err == nil {
			c.Server.Address = host
			if p, perr := strconv.Atoi(port); perr == nil {
				c.Server.Port = p
			}
		}
	}
	if f.Set["data"] {
		c.Storage.DataRoot = f.DataRoot
	}
}
