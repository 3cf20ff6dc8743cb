// Package config loads layered configuration with viper.
//
// Values come from, in increasing precedence: defaults already set on the
// target struct, a YAML config file, a .env file, and the process
// environment. Environment variables map onto nested keys by splitting on
// underscores, so GSTD_BASE_URL sets gstd.base_url.
//
//	cfg := gstctl.DefaultConfig()
//	err := config.LoadConfig("gstctl", &cfg, config.WithConfigFile(path))
//
// ServiceConfig holds the fields every gstclient binary shares and is
// embedded into binary-specific config structs.
package config
