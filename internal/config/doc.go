// Package config loads scribe settings.
//
// Settings are resolved in layers, higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  3. Environment Variables   │  ← SCRIBE_HISTORY_LIMIT, ...
//	├─────────────────────────────┤
//	│  2. Config File             │  ← ~/.config/scribe/config.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │
//	└─────────────────────────────┘
//
// The file is TOML and may pull in other files with an "@include" key.
// Unknown settings are rejected so that typos surface at load time.
//
// # Basic Usage
//
//	cfg, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    return err
//	}
//	log := cfg.Logger(os.Stderr)
//	doc, err := engine.New(cfg.EngineOptions(log)...)
//
// # Sub-packages
//
//   - loader: TOML files with includes, environment variables, map merging
package config
