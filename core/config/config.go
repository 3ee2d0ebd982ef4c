package config

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tristendillon/importfix/core/logger"
	"gopkg.in/yaml.v3"
)

type Config struct {
	SourceRoot string     `yaml:"source_root" toml:"source_root"`
	UIDir      string     `yaml:"ui_dir" toml:"ui_dir"`
	Extensions []string   `yaml:"extensions" toml:"extensions"`
	Exclude    []string   `yaml:"exclude" toml:"exclude"`
	Alias      Alias      `yaml:"alias" toml:"alias"`
	Duplicates Duplicates `yaml:"duplicates" toml:"duplicates"`
}

// Alias maps the leading segment of an alias import to the directory,
// relative to the project, that the segment lives under.
type Alias struct {
	Prefix   string            `yaml:"prefix" toml:"prefix"`
	Fallback string            `yaml:"fallback" toml:"fallback"`
	Segments map[string]string `yaml:"segments" toml:"segments"`
}

type Duplicates struct {
	Segments []string `yaml:"segments" toml:"segments"`
}

var FileNames = []string{"importfix.yaml", "importfix.yml", "importfix.toml"}

func Default() *Config {
	return &Config{
		SourceRoot: "src",
		UIDir:      "src/components/ui",
		Extensions: []string{".ts", ".tsx"},
		Exclude:    []string{"**/node_modules/**"},
		Alias: Alias{
			Prefix:   "@/",
			Fallback: "src/",
			Segments: map[string]string{
				"components/": "src/",
				"pages/":      "src/",
				"hooks/":      "src/",
				"lib/":        "src/",
				"config/":     "src/",
				"types/":      "src/",
				"contexts/":   "src/",
			},
		},
		Duplicates: Duplicates{
			Segments: []string{"hooks", "lib", "components"},
		},
	}
}

// Load reads the first config file found in dir and layers it over
// Default. A directory without a config file yields Default.
func Load(dir string) (*Config, error) {
	var filePath string
	for _, name := range FileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			filePath = p
			break
		}
	}

	cfg := Default()
	if filePath == "" {
		logger.Debug("No config file found in %s, using default config", dir)
		return cfg, nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	var loaded Config
	if strings.HasSuffix(filePath, ".toml") {
		if _, err := toml.Decode(string(data), &loaded); err != nil {
			return nil, fmt.Errorf("failed to parse toml: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &loaded); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	}
	cfg.merge(&loaded)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filePath, err)
	}
	logger.Debug("Config file found: %s", filePath)
	logger.Debug("Config: %+v", *cfg)

	return cfg, nil
}

func (c *Config) merge(o *Config) {
	if o.SourceRoot != "" {
		c.SourceRoot = o.SourceRoot
	}
	if o.UIDir != "" {
		c.UIDir = o.UIDir
	}
	if len(o.Extensions) > 0 {
		c.Extensions = o.Extensions
	}
	if o.Exclude != nil {
		c.Exclude = o.Exclude
	}
	if o.Alias.Prefix != "" {
		c.Alias.Prefix = o.Alias.Prefix
	}
	if o.Alias.Fallback != "" {
		c.Alias.Fallback = o.Alias.Fallback
	}
	if len(o.Alias.Segments) > 0 {
		c.Alias.Segments = o.Alias.Segments
	}
	if len(o.Duplicates.Segments) > 0 {
		c.Duplicates.Segments = o.Duplicates.Segments
	}
}

func (c *Config) Validate() error {
	root := path.Clean(filepath.ToSlash(c.SourceRoot))
	if c.SourceRoot == "" || root == "." {
		return fmt.Errorf("source_root must name a directory")
	}
	if len(c.Extensions) == 0 {
		return fmt.Errorf("extensions must not be empty")
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	ui := path.Clean(filepath.ToSlash(c.UIDir))
	if ui != root && !strings.HasPrefix(ui, root+"/") {
		return fmt.Errorf("ui_dir %q is outside source_root %q", c.UIDir, c.SourceRoot)
	}
	if c.Alias.Prefix == "" {
		return fmt.Errorf("alias.prefix must not be empty")
	}
	return nil
}
