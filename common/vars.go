// Package common holds process-wide helpers shared by the commands.
package common

// Version is overridden at build time with -ldflags "-X ...common.Version=...".
var Version = "dev"

// PackageName prefixes metric names.
const PackageName = "land_registry"
