package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"
)

// ConfigFlag names the flag that points at an explicit config file.
const ConfigFlag = "config"

// Load loads configuration from every layer. fs holds already-parsed
// flags registered with BindFlags and may be nil.
func Load(fs *pflag.FlagSet) (*Config, error) {
	cws, err := LoadWithSources(fs)
	if err != nil {
		return nil, err
	}
	return cws.Config, nil
}

// LoadWithSources loads configuration and tracks the source of each value.
func LoadWithSources(fs *pflag.FlagSet) (*ConfigWithSources, error) {
	cfg := Default()
	cws := &ConfigWithSources{Config: cfg, Sources: make(map[string]ConfigSource)}
	for _, f := range fields {
		cws.Sources[f.key] = SourceDefault
	}

	// 1. User config file
	if path := findUserConfigFile(); path != "" {
		if err := loadConfigFile(cws, path, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
	}

	// 2. Project config file, or the one named on the command line
	projectFile := findProjectConfigFile()
	if fs != nil {
		if explicit, _ := fs.GetString(ConfigFlag); explicit != "" {
			explicit = expandPath(explicit)
			if _, err := os.Stat(explicit); err != nil {
				return nil, fmt.Errorf("config file: %w", err)
			}
			projectFile = explicit
		}
	}
	if projectFile != "" {
		if err := loadConfigFile(cws, projectFile, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectFile, err)
		}
	}

	// 3. Environment
	if err := loadFromEnv(cws); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	// 4. Flags
	if err := applyFlags(cws, fs); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	finalizeConfig(cfg)
	return cws, nil
}

// loadConfigFile decodes path and copies only the keys it defines.
func loadConfigFile(cws *ConfigWithSources, path string, source ConfigSource) error {
	var fileCfg Config
	md, err := toml.DecodeFile(path, &fileCfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	for _, f := range fields {
		if md.IsDefined(f.key) {
			f.copyTo(cws.Config, &fileCfg)
			cws.Sources[f.key] = source
		}
	}
	cws.Files = append(cws.Files, path)
	return nil
}

// loadFromEnv overrides config from TASKBOARD_* variables. Empty values
// are ignored.
func loadFromEnv(cws *ConfigWithSources) error {
	for _, f := range fields {
		v, ok := os.LookupEnv(f.env)
		if !ok || v == "" {
			continue
		}
		if err := f.parse(cws.Config, v); err != nil {
			return fmt.Errorf("%s: %w", f.env, err)
		}
		cws.Sources[f.key] = SourceEnv
	}
	return nil
}

// finalizeConfig normalizes values after all layers are applied.
func finalizeConfig(cfg *Config) {
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	cfg.StorePath = expandPath(cfg.StorePath)
	cfg.LogDir = expandPath(cfg.LogDir)
	cfg.MirrorFile = expandPath(cfg.MirrorFile)
}

// GetConfigFile returns the last config file that was read, or "".
func (cws *ConfigWithSources) GetConfigFile() string {
	if len(cws.Files) == 0 {
		return ""
	}
	return cws.Files[len(cws.Files)-1]
}
