// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads microstep settings.
//
// # Configuration Precedence
//
// Highest first:
//   - Command-line flags (applied by the cli package)
//   - Environment variables (MICROSTEP_*), including a local .env file
//   - ~/.microstep/config.toml
//   - ~/.microstep/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	client := api.New(cfg.API.BaseURL, store, api.WithTimeout(cfg.Timeout()))
package config
