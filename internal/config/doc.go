// Package config loads and validates the YAML configuration for the
// syncstack demo binary, and can watch the file for hot reloads.
package config
