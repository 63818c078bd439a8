// Package config loads reqlog configuration using koanf.
//
// Priority (highest to lowest):
//
//  1. Explicit overrides (command-line flags)
//  2. Environment variables (REQLOG_SECTION_KEY)
//  3. Configuration file (YAML)
//  4. Default values
package config
