// Package config resolves playctl settings from defaults, an optional TOML
// file, a .env file and the process environment.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// DefaultFile is read when no --config flag is given and the file exists.
const DefaultFile = "playctl.toml"

// Environment variables consulted by ApplyEnv.
const (
	EnvPlaybookDir = "PLAYBOOK_DIR"
	EnvInventory   = "INVENTORY_DIR"
	EnvVerbose     = "VERBOSE"
	EnvEngine      = "PLAYCTL_ENGINE"
	EnvLogFile     = "PLAYCTL_LOG_FILE"
)

// Config holds the settings shared by every command.
type Config struct {
	PlaybookDir string `toml:"playbook_dir"`
	Inventory   string `toml:"inventory"`
	Engine      string `toml:"engine"`
	Verbose     bool   `toml:"verbose"`
	LogFile     string `toml:"log_file"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		PlaybookDir: "playbooks/",
		Inventory:   "inventory.yaml",
		Engine:      "ansible-playbook",
	}
}

// LoadFile decodes a TOML file over the defaults. Unknown keys are rejected.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return Config{}, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Load reads path when it is set, or DefaultFile when that exists, then
// applies environment overrides through lookup.
func Load(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	switch {
	case path != "":
		c, err := LoadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = c
	default:
		if _, err := os.Stat(DefaultFile); err == nil {
			c, err := LoadFile(DefaultFile)
			if err != nil {
				return Config{}, err
			}
			cfg = c
		}
	}
	cfg.ApplyEnv(lookup)
	return cfg, nil
}

// ApplyEnv overrides settings from environment variables. An unparsable
// VERBOSE value counts as false.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		return
	}
	if v, ok := lookup(EnvPlaybookDir); ok && v != "" {
		c.PlaybookDir = v
	}
	if v, ok := lookup(EnvInventory); ok && v != "" {
		c.Inventory = v
	}
	if v, ok := lookup(EnvEngine); ok && v != "" {
		c.Engine = v
	}
	if v, ok := lookup(EnvLogFile); ok && v != "" {
		c.LogFile = v
	}
	if v, ok := lookup(EnvVerbose); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		c.Verbose = err == nil && b
	}
}

// LoadDotEnv reads KEY=VALUE lines from path and sets any variable that is
// not already set. Blank lines and # comments are skipped, surrounding
// quotes are removed. A missing file is not an error.
func LoadDotEnv(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.Trim(strings.TrimSpace(parts[1]), `"'`)
		if _, set := os.LookupEnv(key); !set {
			os.Setenv(key, val)
		}
	}
	return scanner.Err()
}
