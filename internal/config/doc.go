// SPDX-License-Identifier: MPL-2.0

// Package config loads bindle's configuration.
//
// Configuration lives in a CUE file validated against an embedded schema
// before being merged into Viper over built-in defaults. The search order is:
// an explicit --config path, then ./bindle.cue in the working directory, then
// config.cue under the platform config directory, then defaults.
package config
