package config

import (
	"github.com/spf13/pflag"
)

// BindFlags registers one flag per config key, plus --config, on fs.
// Flag defaults are the built-in defaults; only flags the user actually
// sets override the other layers.
func BindFlags(fs *pflag.FlagSet) {
	def := Default()
	fs.String(ConfigFlag, "", "Config file (overrides ./taskboard.toml)")
	for _, f := range fields {
		switch f.kind {
		case kindInt:
			fs.Int(f.flag, *f.num(def), f.usage)
		case kindBool:
			fs.Bool(f.flag, *f.boolean(def), f.usage)
		default:
			fs.String(f.flag, *f.str(def), f.usage)
		}
	}
}

// applyFlags copies explicitly set flags into the config.
func applyFlags(cws *ConfigWithSources, fs *pflag.FlagSet) error {
	if fs == nil {
		return nil
	}
	set := make(map[string]bool)
	fs.Visit(func(fl *pflag.Flag) {
		set[fl.Name] = true
	})
	for _, f := range fields {
		if !set[f.flag] {
			continue
		}
		var err error
		switch f.kind {
		case kindInt:
			*f.num(cws.Config), err = fs.GetInt(f.flag)
		case kindBool:
			*f.boolean(cws.Config), err = fs.GetBool(f.flag)
		default:
			*f.str(cws.Config), err = fs.GetString(f.flag)
		}
		if err != nil {
			return err
		}
		cws.Sources[f.key] = SourceFlag
	}
	return nil
}
