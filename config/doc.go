// Package config loads run configuration from YAML files, .env files and
// environment variables. The pipeline package defines the config structs;
// this package only finds, unmarshals and validates them.
package config
