// Package types defines the domain entities, configuration, and standard
// errors for the lawstore embedded legal-case data store.
//
// The types here are storage-shape types: every field maps to a column in
// the relational schema managed by internal/store. Callers construct and
// mutate them through the repository accessors on store.Store, not by
// writing SQL directly.
package types
