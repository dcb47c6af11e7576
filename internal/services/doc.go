// Package services defines shared utilities consumed by the caption pipeline
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp session names, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper so failures carry both a
//     classification and the stage/operation that produced them.
//   - StatusMessage, which turns a classified error into the one-line message
//     shown to the user.
//
// Remote integrations (the caption model client) live in subpackages.
package services
