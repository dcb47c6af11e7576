// Package subtitles reads and writes SRT files and orchestrates caption
// generation for a session.
//
// Generate runs one pipeline per call: credential pre-flight, per-session
// lock, audio normalization, a single model request, interpretation of the
// reply, and an atomic replacement of the session's segments. Nothing is
// stored unless every step succeeds. Import does the same for an existing SRT
// file; Export writes the current segments back out.
//
// The SRT codec numbers cues from 1, writes HH:MM:SS,mmm timings, and on read
// tolerates CRLF line endings, a UTF-8 BOM, cue settings after the end
// timestamp, and multi-line cue text (joined with spaces).
package subtitles
