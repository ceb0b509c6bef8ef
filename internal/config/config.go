// Package config loads the patch client's configuration from a YAML file,
// with optional .env overrides, mirroring the teacher's own
// pkg/encoding/yaml.go + common.go load pattern and its use of godotenv for
// environment overlays in cmd/mutagen/compose.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// defaultChunkSize is IcePatch2.ChunkSize's documented default (spec §6).
const defaultChunkSize = 100000

// defaultIdentity is IcePatch2.Identity's documented default (spec §6).
const defaultIdentity = "IcePatch2/server"

// Configuration enumerates the six properties from spec §6 plus the
// supplemented IgnorePatterns property (SPEC_FULL.md §4.X).
type Configuration struct {
	// Directory is the data directory; relative paths are resolved against
	// the current working directory.
	Directory string `yaml:"directory"`
	// Thorough forces a full rescan even if a local manifest exists.
	Thorough bool `yaml:"thorough"`
	// DryRun disables all filesystem mutation and worker activity.
	DryRun bool `yaml:"dryRun"`
	// ChunkSize is the max bytes per compressed chunk request.
	ChunkSize int64 `yaml:"chunkSize"`
	// Endpoints are the transport endpoints for the remote file server.
	Endpoints string `yaml:"endpoints"`
	// Identity is the logical identity of the remote server object.
	Identity string `yaml:"identity"`
	// IgnorePatterns excludes matching paths from scanning and
	// reconciliation (SPEC_FULL.md §4.X, not present in the original
	// protocol).
	IgnorePatterns []string `yaml:"ignorePatterns"`
}

// Default returns a Configuration with every default applied (spec §6).
func Default() Configuration {
	return Configuration{
		ChunkSize: defaultChunkSize,
		Identity:  defaultIdentity,
	}
}

// Load reads a YAML configuration file at path, applying defaults for any
// field the file omits, then overlays a .env file from the current working
// directory (if present) and the process environment onto the three string
// fields that commonly vary between environments.
func Load(path string) (Configuration, error) {
	configuration := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Configuration{}, fmt.Errorf("unable to read configuration file: %w", err)
	}
	if err := yaml.Unmarshal(data, &configuration); err != nil {
		return Configuration{}, fmt.Errorf("unable to parse configuration file: %w", err)
	}

	applyEnvOverrides(&configuration)

	return configuration.normalize(), nil
}

// applyEnvOverrides loads a .env file (if present in the working directory)
// via godotenv and applies ICEPATCH2_DIRECTORY, ICEPATCH2_ENDPOINTS, and
// ICEPATCH2_IDENTITY on top of whatever the YAML file specified, matching
// SPEC_FULL.md §6.
func applyEnvOverrides(configuration *Configuration) {
	_ = godotenv.Load()

	if value, ok := os.LookupEnv("ICEPATCH2_DIRECTORY"); ok {
		configuration.Directory = value
	}
	if value, ok := os.LookupEnv("ICEPATCH2_ENDPOINTS"); ok {
		configuration.Endpoints = value
	}
	if value, ok := os.LookupEnv("ICEPATCH2_IDENTITY"); ok {
		configuration.Identity = value
	}
}

// normalize clamps ChunkSize to at least 1 (spec §8 "chunk_size = 0 is
// clamped to 1") and applies the Identity default if the field was left
// empty by the configuration file.
func (c Configuration) normalize() Configuration {
	if c.ChunkSize < 1 {
		c.ChunkSize = 1
	}
	if c.Identity == "" {
		c.Identity = defaultIdentity
	}
	return c
}

// Validate checks the two required fields (spec §7 taxonomy item 1).
func (c Configuration) Validate() error {
	if c.Directory == "" {
		return fmt.Errorf("no data directory specified")
	}
	if c.Endpoints == "" {
		return fmt.Errorf("property \"Endpoints\" is not set")
	}
	return nil
}
