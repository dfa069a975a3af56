// Package file provides a TOML-backed implementation of the ConfigStore
// port, persisting decker configuration under the user config directory.
package file
