// Package version exposes the version of the Archway core build.
package version

// Version is the current version of the Archway core. It is overridden at
// build time via -ldflags.
var Version = "0.1.0-dev"
