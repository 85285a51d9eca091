// Package config loads labctl's settings.
//
// # Resolution order
//
// Later sources win:
//
//  1. Built-in defaults
//  2. The TOML file (~/.config/labctl/config.toml unless --config is given)
//  3. A .env file in the working directory
//  4. LABCTL_* environment variables
//  5. Command-line flags (applied by the caller through Config.Override)
//
// A missing config file or .env file is not an error.
//
// # TOML Format
//
//	api_base_url = "http://127.0.0.1:8080"
//	request_timeout = "10s"
//	refresh_interval = "0s"
//	log_file = "~/.local/state/labctl/labctl.log"
//	log_level = "info"
//
// All fields are optional and trimmed. Durations use Go syntax. A zero
// refresh_interval disables background refreshes. Tilde expansion is applied
// to log_file.
//
// # Environment
//
//	LABCTL_API_BASE_URL
//	LABCTL_REQUEST_TIMEOUT
//	LABCTL_REFRESH_INTERVAL
//	LABCTL_LOG_FILE
//	LABCTL_LOG_LEVEL
package config
