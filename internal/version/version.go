// Package version holds the build version, overridable at link time with
// -ldflags "-X github.com/aristath/kafkanator/internal/version.Version=...".
package version

// Version of the running build
var Version = "1.0.0"
