// Package audio converts media files into the canonical audio payload sent
// to the caption model: 16 kHz mono signed 16-bit PCM in a 44-byte-header WAV
// container, base64 encoded for transport.
//
// Decoding and resampling are delegated to ffmpeg, which renders the whole
// file offline. Quantization, container layout, and transport encoding are
// done here so their exact behavior is fixed and testable.
package audio
