package locate

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file looked up when none is given.
const DefaultConfigFile = ".lambdaloc.yaml"

// Mode selects how much of the package is type-checked for a lookup.
type Mode string

const (
	// ModeFile type-checks the file on its own. Fast, but identifiers from
	// sibling files stay unresolved.
	ModeFile Mode = "file"
	// ModePackage type-checks the whole package through the go command.
	ModePackage Mode = "package"
)

// Config represents the engine configuration.
type Config struct {
	Name       string   `yaml:"name"`
	Mode       Mode     `yaml:"mode"`
	BuildFlags []string `yaml:"build_flags,omitempty"`
	// CacheMaxCost bounds the parsed units kept in memory, in source bytes.
	CacheMaxCost int64 `yaml:"cache_max_cost"`
}

func DefaultConfig() Config {
	return Config{
		Name:         "lambdaloc",
		Mode:         ModeFile,
		CacheMaxCost: 64 << 20,
	}
}

func (c Config) validate() error {
	switch c.Mode {
	case ModeFile, ModePackage:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	if c.CacheMaxCost <= 0 {
		return fmt.Errorf("cache_max_cost must be positive, got %d", c.CacheMaxCost)
	}
	return nil
}

// LoadConfig reads the configuration file at path. A missing file yields
// the default configuration; fields absent from the file keep their
// defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		path = DefaultConfigFile
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return config, err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return config, fmt.Errorf("error decoding %s: %w", path, err)
	}

	return config, config.validate()
}

// WriteConfig writes config to path as yaml.
func WriteConfig(path string, config Config) error {
	if path == "" {
		path = DefaultConfigFile
	}

	d, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(d)
	return err
}
