// Package config loads project-level defaults for fstage from fstage.yaml,
// with optional overrides from a .env-style file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vvka-141/fstage/internal/digest"
	"github.com/vvka-141/fstage/pkg/fstage"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ConfigFileName is the project config file looked up under the source path.
const ConfigFileName = "fstage.yaml"

// EnvFileName is the optional override file looked up next to the config.
const EnvFileName = ".env"

// Environment override keys.
const (
	EnvDigest      = "FSTAGE_DIGEST"
	EnvOnError     = "FSTAGE_ON_ERROR"
	EnvFollowLinks = "FSTAGE_FOLLOW_LINKS"
	EnvOverwrite   = "FSTAGE_OVERWRITE"
)

// ProjectConfig carries the defaults applied to every command run against a
// project directory.
type ProjectConfig struct {
	Digest      string `yaml:"digest"`
	OnError     string `yaml:"on_error"`
	FollowLinks bool   `yaml:"follow_links"`
	Overwrite   bool   `yaml:"overwrite"`
}

// Default returns the built-in configuration.
func Default() *ProjectConfig {
	return &ProjectConfig{
		Digest:  string(digest.Default),
		OnError: fstage.Rethrow.String(),
	}
}

// Load reads fstage.yaml from sourcePath. A missing file returns
// ErrConfigNotFound; callers typically fall back to Default.
func Load(sourcePath string) (*ProjectConfig, error) {
	configPath := filepath.Join(sourcePath, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", fstage.ErrConfigInvalid, err)
	}
	return cfg, nil
}

// LoadWithOverrides loads the project config (or defaults when missing) and
// applies overrides from an optional .env file and the process environment.
// Process environment variables win over the .env file.
func LoadWithOverrides(sourcePath string) (*ProjectConfig, error) {
	cfg, err := Load(sourcePath)
	if errors.Is(err, ErrConfigNotFound) {
		cfg = Default()
	} else if err != nil {
		return nil, err
	}

	overrides := map[string]string{}
	envPath := filepath.Join(sourcePath, EnvFileName)
	if _, statErr := os.Stat(envPath); statErr == nil {
		fileVars, readErr := godotenv.Read(envPath)
		if readErr != nil {
			return nil, fmt.Errorf("%w: %s: %v", fstage.ErrConfigInvalid, envPath, readErr)
		}
		overrides = fileVars
	}
	for _, key := range []string{EnvDigest, EnvOnError, EnvFollowLinks, EnvOverwrite} {
		if v, ok := os.LookupEnv(key); ok {
			overrides[key] = v
		}
	}

	if err := cfg.apply(overrides); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *ProjectConfig) apply(vars map[string]string) error {
	if v, ok := vars[EnvDigest]; ok {
		c.Digest = v
	}
	if v, ok := vars[EnvOnError]; ok {
		c.OnError = v
	}
	if v, ok := vars[EnvFollowLinks]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", fstage.ErrConfigInvalid, EnvFollowLinks, err)
		}
		c.FollowLinks = b
	}
	if v, ok := vars[EnvOverwrite]; ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", fstage.ErrConfigInvalid, EnvOverwrite, err)
		}
		c.Overwrite = b
	}
	return nil
}

// Validate checks that the configured identifiers are usable.
func (c *ProjectConfig) Validate() error {
	if _, err := digest.New(digest.Algorithm(c.Digest)); err != nil {
		return fmt.Errorf("%w: digest: %v", fstage.ErrConfigInvalid, err)
	}
	if _, err := fstage.ParseErrorPolicy(c.OnError); err != nil {
		return fmt.Errorf("%w: on_error: %v", fstage.ErrConfigInvalid, err)
	}
	return nil
}

// Calculator builds the configured digest calculator.
func (c *ProjectConfig) Calculator() (digest.Calculator, error) {
	return digest.New(digest.Algorithm(c.Digest))
}

// Policy returns the configured default error policy.
func (c *ProjectConfig) Policy() (fstage.ErrorPolicy, error) {
	return fstage.ParseErrorPolicy(c.OnError)
}
