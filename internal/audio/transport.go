package audio

import (
	"encoding/base64"
	"strings"
)

// DefaultChunkBytes bounds each write into the transport encoder.
const DefaultChunkBytes = 32 * 1024

// EncodeTransport returns the standard base64 encoding of data, feeding the
// encoder chunkSize bytes at a time.
func EncodeTransport(data []byte, chunkSize int) string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkBytes
	}
	var sb strings.Builder
	sb.Grow(base64.StdEncoding.EncodedLen(len(data)))
	enc := base64.NewEncoder(base64.StdEncoding, &sb)
	for start := 0; start < len(data); start += chunkSize {
		end := min(start+chunkSize, len(data))
		// strings.Builder writes never fail.
		_, _ = enc.Write(data[start:end])
	}
	_ = enc.Close()
	return sb.String()
}
