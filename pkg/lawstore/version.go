// Package lawstore exposes module-level metadata.
package lawstore

// Version is the lawstore release version.
const Version = "v0.3.0"
