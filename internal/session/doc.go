// Package session persists named caption sessions in SQLite.
//
// A session holds the media path it was generated from, the parameters of the
// last generation or import, and an ordered segment list. ReplaceSegments
// swaps the whole list in one transaction, so a failed run never leaves a
// partial result behind. Individual segments can have their text edited or be
// deleted; timing is only ever set by generation or import.
//
// Lock provides a per-session flock so two processes cannot generate into the
// same session at once. Schema changes go in a new file under migrations/.
package session
