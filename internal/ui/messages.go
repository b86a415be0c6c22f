// Package ui provides the Bubble Tea TUI for the bookmarks timeline.
package ui

import "github.com/abelbrown/bookmarks/internal/config"

// ConfigReloaded is sent when the config file changed on disk.
type ConfigReloaded struct {
	Config *config.Config
}

// configClosed is sent when the config watcher stops.
type configClosed struct{}
