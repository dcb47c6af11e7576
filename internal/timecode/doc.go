// Package timecode converts between caption timestamps and seconds.
//
// Parse accepts the model's MM:SS.mmm form and the subtitle file's
// HH:MM:SS,mmm form. Malformed input is always an error; only the empty
// string maps to zero.
package timecode
