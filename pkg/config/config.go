// Package config loads the optional settings file of the command line. A
// setting only applies when the matching flag is not given explicitly.
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	KeyAlg      = "alg"
	KeyParallel = "parallel"
	KeyMaxTries = "maxTries"
	KeyMaxFlips = "maxFlips"
	KeyDrat     = "drat"
	KeyBest     = "best"
	KeySeed     = "seed"
)

type Settings struct {
	Alg      int    `mapstructure:"alg"`
	Parallel bool   `mapstructure:"parallel"`
	MaxTries uint32 `mapstructure:"maxTries"`
	MaxFlips uint32 `mapstructure:"maxFlips"`
	Drat     string `mapstructure:"drat"`
	Best     bool   `mapstructure:"best"`
	Seed     uint64 `mapstructure:"seed"`

	keys map[string]bool
}

// Has reports whether key was present in the loaded file.
func (s Settings) Has(key string) bool {
	return s.keys[key]
}

// Load reads a JSON or YAML settings file, chosen by extension. Unknown keys
// are rejected.
func Load(path string) (Settings, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, errors.Wrap(err, "cannot read settings file")
	}

	var raw map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		decoder := json.NewDecoder(bytes.NewReader(content))
		decoder.UseNumber()
		err = decoder.Decode(&raw)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, &raw)
	default:
		return Settings{}, errors.Errorf("unsupported settings file %q: expected .json, .yaml or .yml", path)
	}
	if err != nil {
		return Settings{}, errors.Wrapf(err, "cannot parse settings file %q", path)
	}
	return Decode(raw)
}

// Decode maps raw key/value pairs onto Settings.
func Decode(raw map[string]any) (Settings, error) {
	var (
		settings Settings
		metadata mapstructure.Metadata
	)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Metadata:    &metadata,
		Result:      &settings,
	})
	if err != nil {
		return Settings{}, errors.WithStack(err)
	}
	if err := decoder.Decode(raw); err != nil {
		return Settings{}, errors.Wrap(err, "invalid settings")
	}

	settings.keys = make(map[string]bool, len(metadata.Keys))
	for _, key := range metadata.Keys {
		settings.keys[key] = true
	}
	return settings, nil
}
