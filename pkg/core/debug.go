package core

import "sync/atomic"

var debugMode atomic.Bool

func init() {
	debugMode.Store(true)
}

// DebugMode reports whether error placeholders paint a visible marker.
func DebugMode() bool {
	return debugMode.Load()
}

// SetDebugMode enables or disables debug mode for the framework.
func SetDebugMode(debug bool) {
	debugMode.Store(debug)
}
