// Package config loads the optional tagbump configuration file.
//
// The file is YAML (.yaml, .yml) or TOML (.toml), chosen by extension. When no
// path is given, the first of DefaultNames found in the search directory is
// used; finding none is not an error.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// DefaultNames are searched in order.
var DefaultNames = []string{".tagbump.yaml", ".tagbump.yml", ".tagbump.toml"}

// ErrUnsupportedFormat is returned for config files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// File holds the settings a config file may provide. Empty fields mean "not set".
type File struct {
	VersionFile   string   `yaml:"version_file" toml:"version_file"`
	Message       string   `yaml:"message" toml:"message"`
	Git           string   `yaml:"git" toml:"git"`
	RemoteBackend string   `yaml:"remote_backend" toml:"remote_backend"`
	BumpFiles     []string `yaml:"bump_files" toml:"bump_files"`

	// Path is the file the settings came from, empty when none was found.
	Path string `yaml:"-" toml:"-"`
}

// Discover returns the first default config file present in dir.
func Discover(dir string) (string, bool) {
	for _, name := range DefaultNames {
		p := filepath.Join(dir, name)
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p, true
		}
	}
	return "", false
}

// Load reads the config at path. An empty path triggers discovery in dir.
func Load(path, dir string) (File, error) {
	if path == "" {
		found, ok := Discover(dir)
		if !ok {
			return File{}, nil
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("reading config %s: %w", path, err)
	}

	var f File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return File{}, fmt.Errorf("parsing YAML config %s: %w", path, err)
		}
	case ".toml":
		if _, err := toml.Decode(string(data), &f); err != nil {
			return File{}, fmt.Errorf("parsing TOML config %s: %w", path, err)
		}
	default:
		return File{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	f.Path = path
	return f, nil
}
