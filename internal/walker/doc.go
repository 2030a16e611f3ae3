// Package walker enumerates candidate image files under a scan root.
//
// Walk validates the root up front and returns a lazy iter.Seq so callers can
// stop early without walking the rest of the tree. Symlinks are never
// followed, and errors below the root skip the offending entry instead of
// ending the walk.
package walker
