package audio

import (
	"encoding/binary"
	"fmt"
	"io"

	"captioner/internal/fileutil"
)

// EncodeWAV serializes the buffer as a canonical 44-byte-header PCM WAV file.
func EncodeWAV(pcm PCMBuffer) []byte {
	dataLen := len(pcm) * BlockAlign
	out := make([]byte, wavHeaderBytes+dataLen)
	putHeader(out[:wavHeaderBytes], dataLen)
	payload := out[wavHeaderBytes:]
	for i, sample := range pcm {
		binary.LittleEndian.PutUint16(payload[i*2:], uint16(sample))
	}
	return out
}

// WriteWAV streams the WAV encoding of pcm to w.
func WriteWAV(w io.Writer, pcm PCMBuffer) error {
	if _, err := w.Write(EncodeWAV(pcm)); err != nil {
		return fmt.Errorf("write wav: %w", err)
	}
	return nil
}

// WriteWAVFile writes the WAV encoding of pcm to path, replacing it atomically.
func WriteWAVFile(path string, pcm PCMBuffer) error {
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return WriteWAV(w, pcm)
	})
}

func putHeader(h []byte, dataLen int) {
	le := binary.LittleEndian
	copy(h[0:4], "RIFF")
	le.PutUint32(h[4:8], uint32(36+dataLen))
	copy(h[8:12], "WAVE")
	copy(h[12:16], "fmt ")
	le.PutUint32(h[16:20], 16) // fmt chunk size
	le.PutUint16(h[20:22], 1)  // PCM
	le.PutUint16(h[22:24], Channels)
	le.PutUint32(h[24:28], SampleRate)
	le.PutUint32(h[28:32], ByteRate)
	le.PutUint16(h[32:34], BlockAlign)
	le.PutUint16(h[34:36], BitsPerSample)
	copy(h[36:40], "data")
	le.PutUint32(h[40:44], uint32(dataLen))
}
