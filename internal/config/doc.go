// Package config defines the application's configuration structure and
// loading logic. Configuration is sourced from environment variables with
// the BOOKMATE_ prefix, an optional config.yaml, and built-in defaults,
// then validated before use.
package config
