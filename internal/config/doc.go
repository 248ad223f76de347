// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// A config file is optional: Load("") yields an empty config that applyDefaults
// fills with the stock CoinGecko demo settings. The API key falls back to
// $COINGECKO_API_KEY when not set in the file.
package config
