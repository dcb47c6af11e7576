package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"captioner/internal/media/ffprobe"
	"captioner/internal/services"
)

// Decoder renders a media file's audio track as mono float samples at SampleRate.
type Decoder interface {
	Decode(ctx context.Context, path string) ([]float32, error)
}

// Runner executes a command and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Prober inspects a media file before decoding.
type Prober func(ctx context.Context, path string) (ffprobe.Result, error)

// FFmpegDecoder decodes, downmixes, and resamples through ffmpeg in a single
// offline pass over the whole file.
type FFmpegDecoder struct {
	binary string
	run    Runner
	probe  Prober
}

// DecoderOption configures an FFmpegDecoder.
type DecoderOption func(*FFmpegDecoder)

// WithRunner overrides command execution, primarily for tests.
func WithRunner(r Runner) DecoderOption {
	return func(d *FFmpegDecoder) {
		if r != nil {
			d.run = r
		}
	}
}

// WithProber sets the pre-decode inspection. Without one the decoder relies
// on ffmpeg alone to detect a missing audio track.
func WithProber(p Prober) DecoderOption {
	return func(d *FFmpegDecoder) {
		d.probe = p
	}
}

// FFprobeProber returns a Prober backed by the ffprobe binary.
func FFprobeProber(binary string) Prober {
	return func(ctx context.Context, path string) (ffprobe.Result, error) {
		return ffprobe.Inspect(ctx, binary, path)
	}
}

// NewFFmpegDecoder constructs a decoder using the supplied ffmpeg binary.
func NewFFmpegDecoder(binary string, opts ...DecoderOption) *FFmpegDecoder {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffmpeg"
	}
	d := &FFmpegDecoder{binary: binary, run: execRunner}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode returns the file's audio as mono float32 samples at SampleRate.
func (d *FFmpegDecoder) Decode(ctx context.Context, path string) ([]float32, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "audio", "open", path, err)
		}
		return nil, services.Wrap(services.ErrAudioDecode, "audio", "open", path, err)
	}
	if info.IsDir() {
		return nil, services.Wrap(services.ErrAudioDecode, "audio", "open", path+" is a directory", nil)
	}

	if d.probe != nil {
		result, err := d.probe(ctx, path)
		switch {
		case proberUnavailable(err):
			// ffprobe is optional; ffmpeg still reports a missing audio track.
		case err != nil:
			return nil, services.Wrap(services.ErrAudioDecode, "audio", "probe", "unreadable media", err)
		case result.AudioStreamCount() == 0:
			return nil, services.Wrap(services.ErrAudioDecode, "audio", "probe", "no audio stream", nil)
		}
	}

	output, err := d.run(ctx, d.binary, buildDecodeArgs(path)...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, services.Wrap(services.ErrAudioDecode, "audio", "decode", "ffmpeg failed", err)
	}
	samples, err := decodeFloat32LE(output)
	if err != nil {
		return nil, services.Wrap(services.ErrAudioDecode, "audio", "decode", "", err)
	}
	if len(samples) == 0 {
		return nil, services.Wrap(services.ErrAudioDecode, "audio", "decode", "no samples rendered", nil)
	}
	return samples, nil
}

// proberUnavailable reports whether the probe binary could not be launched,
// as opposed to failing on the media itself.
func proberUnavailable(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission)
}

func buildDecodeArgs(path string) []string {
	return []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "error",
		"-i", path,
		"-vn",
		"-sn",
		"-dn",
		"-ac", strconv.Itoa(Channels),
		"-ar", strconv.Itoa(SampleRate),
		"-f", "f32le",
		"-c:a", "pcm_f32le",
		"-",
	}
}

func decodeFloat32LE(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("float stream length %d is not a multiple of 4", len(data))
	}
	out := make([]float32, len(data)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out, nil
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	var stderr strings.Builder
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(stderr.String()))
	}
	return output, nil
}
