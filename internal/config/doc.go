// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads, validates and saves the devcli configuration.
//
// # Configuration Precedence
//
// Highest first:
//   - Environment variables (DEVCLI_TYPE, DEVCLI_ADDRESS, DEVCLI_PORT, DEVCLI_COLOR),
//     including those set by a .env file in the working directory
//   - ~/.devcli/config.toml
//   - Built-in defaults (UDP to 127.0.0.1:5005, no color)
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	host, port := cfg.Connection.Address()
//
// Dot-notation access backs the /config console command:
//
//	v, _ := cfg.Get("connection.udp_port")
//	_ = cfg.Set("ui.color", "sea")
//	_ = config.Save(cfg, "")
package config
