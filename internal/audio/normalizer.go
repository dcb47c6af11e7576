package audio

import (
	"context"
	"log/slog"
	"time"

	"captioner/internal/logging"
)

// Result is the transport-ready canonical container for one media file.
type Result struct {
	Transport       string
	Samples         int
	DurationSeconds float64
	ContainerBytes  int
}

// Normalizer turns arbitrary media into a base64-encoded 16 kHz mono WAV.
type Normalizer struct {
	decoder   Decoder
	chunkSize int
	logger    *slog.Logger
}

// NewNormalizer constructs a normalizer. A non-positive chunkSize selects
// DefaultChunkBytes.
func NewNormalizer(decoder Decoder, chunkSize int, logger *slog.Logger) *Normalizer {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkBytes
	}
	return &Normalizer{
		decoder:   decoder,
		chunkSize: chunkSize,
		logger:    logging.NewComponentLogger(logger, "normalizer"),
	}
}

// Render decodes and quantizes the file's audio track.
func (n *Normalizer) Render(ctx context.Context, path string) (PCMBuffer, error) {
	start := time.Now()
	samples, err := n.decoder.Decode(ctx, path)
	if err != nil {
		return nil, err
	}
	pcm := Quantize(samples)
	logging.WithContext(ctx, n.logger).Debug("audio rendered",
		logging.String("path", path),
		logging.Int("samples", len(pcm)),
		logging.Float64("duration_seconds", pcm.DurationSeconds()),
		logging.Duration("elapsed", time.Since(start)),
	)
	return pcm, nil
}

// Normalize renders the file and returns its transport-encoded WAV container.
func (n *Normalizer) Normalize(ctx context.Context, path string) (Result, error) {
	pcm, err := n.Render(ctx, path)
	if err != nil {
		return Result{}, err
	}
	container := EncodeWAV(pcm)
	return Result{
		Transport:       EncodeTransport(container, n.chunkSize),
		Samples:         len(pcm),
		DurationSeconds: pcm.DurationSeconds(),
		ContainerBytes:  len(container),
	}, nil
}
