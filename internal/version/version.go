// Package version holds the build version string.
package version

// Version is the current ARC release version.
const Version = "0.4.1"
