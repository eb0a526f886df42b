// Package catalog holds the static survey content: experiment metadata,
// instructions and question records.
//
// A Catalog is immutable once loaded. The session state machine and the
// exporters receive it by pointer and never modify it.
//
// Catalogs are read from YAML, JSON or CUE files (LoadFile) or taken from the
// built-in Default. Every catalog passes two gates before use:
//
//  1. Structural: unified with the embedded CUE schema (schema.cue)
//  2. Semantic: Validate checks cross-field rules such as the AI
//     recommendation matching an option label
package catalog
