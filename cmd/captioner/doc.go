// Package main hosts the captioner CLI.
//
// Commands operate on a named session (--session, default "default") stored
// in the data directory's SQLite database. generate sends a media file's audio
// to the configured model and replaces the session's segments; import, edit,
// and delete adjust them by hand; export writes SRT. Config resolution, the
// store, and logging are wired once per invocation in commandContext so the
// commands stay declarative.
package main
