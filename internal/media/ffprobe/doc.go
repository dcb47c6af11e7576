// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// The audio normalizer uses it to reject files without an audio track before
// spending time on a full decode, and the probe command uses it to describe
// a media file's audio streams.
package ffprobe
