// Package config loads and validates the TOML option record described in
// SPEC_FULL.md §6, the Go analogue of the original toml++-based translator
// config (original_source/XenonRecomp/pch.h lists toml++ as a dependency).
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"ppcrecomp/internal/emitter"
	"ppcrecomp/internal/ppcerr"
)

// Options mirrors the `[options]` table, one field per elision flag.
type Options struct {
	NonArgumentAsLocal bool `toml:"non_argument_as_local"`
	NonVolatileAsLocal bool `toml:"non_volatile_as_local"`
	SkipLR             bool `toml:"skip_lr"`
	SkipMSR            bool `toml:"skip_msr"`
	CtrAsLocal         bool `toml:"ctr_as_local"`
	XerAsLocal         bool `toml:"xer_as_local"`
	ReservedAsLocal    bool `toml:"reserved_as_local"`
	CrAsLocal          bool `toml:"cr_as_local"`
}

// Config is the top-level TOML document.
type Config struct {
	In          string  `toml:"in"`
	Out         string  `toml:"out"`
	Target      string  `toml:"target"`
	SwitchTable string  `toml:"switch_table"`
	Options     Options `toml:"options"`
}

// Profile converts the loaded [options] table into an emitter.ElisionProfile.
func (c Config) Profile() emitter.ElisionProfile {
	return emitter.ElisionProfile{
		NonArgumentAsLocal: c.Options.NonArgumentAsLocal,
		NonVolatileAsLocal: c.Options.NonVolatileAsLocal,
		SkipLR:             c.Options.SkipLR,
		SkipMSR:            c.Options.SkipMSR,
		CtrAsLocal:         c.Options.CtrAsLocal,
		XerAsLocal:         c.Options.XerAsLocal,
		ReservedAsLocal:    c.Options.ReservedAsLocal,
		CrAsLocal:          c.Options.CrAsLocal,
	}
}

// Load parses and validates the TOML document at path. Unrecognised keys
// anywhere in the document are a ConfigError (fatal), per spec.md §7 — the
// md.Undecoded() check below is what catches them, since BurntSushi/toml
// silently ignores unknown keys by default.
func Load(path string) (Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, ppcerr.Wrap(ppcerr.ConfigError, 0, "failed to parse config "+path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, ppcerr.New(ppcerr.ConfigError, 0, fmt.Sprintf("unrecognised config keys: %v", undecoded))
	}
	if cfg.In == "" {
		return Config{}, ppcerr.New(ppcerr.ConfigError, 0, "config is missing required key \"in\"")
	}
	if cfg.Out == "" {
		return Config{}, ppcerr.New(ppcerr.ConfigError, 0, "config is missing required key \"out\"")
	}
	return cfg, nil
}
