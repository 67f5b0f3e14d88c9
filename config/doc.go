// Package config loads and watches the coordination core's configuration.
//
// Configuration is layered: built-in defaults, then an optional YAML file,
// then environment variable overrides. A polling file watcher with a hot
// reload manager applies safe changes at runtime.
package config
