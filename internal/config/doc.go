// Package config manages user-level defaults stored at ~/.csprojgen/config.yaml.
// Values can also come from CSPROJGEN_* environment variables; command-line
// flags bound through viper take precedence over both.
package config
