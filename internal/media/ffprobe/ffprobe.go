package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index         int               `json:"index"`
	CodecName     string            `json:"codec_name"`
	CodecType     string            `json:"codec_type"`
	Duration      string            `json:"duration"`
	SampleRate    string            `json:"sample_rate"`
	Channels      int               `json:"channels"`
	ChannelLayout string            `json:"channel_layout"`
	Tags          map[string]string `json:"tags"`
	Disposition   map[string]int    `json:"disposition"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return Result{}, fmt.Errorf("ffprobe inspect: %w", err)
	}
	return Parse(output)
}

// Parse decodes ffprobe's JSON output.
func Parse(data []byte) (Result, error) {
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// AudioStreams returns the audio streams in container order.
func (r Result) AudioStreams() []Stream {
	var out []Stream
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			out = append(out, stream)
		}
	}
	return out
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	return len(r.AudioStreams())
}

// PrimaryAudio returns the stream ffmpeg selects by default: the one flagged
// default, else the first audio stream.
func (r Result) PrimaryAudio() (Stream, bool) {
	streams := r.AudioStreams()
	if len(streams) == 0 {
		return Stream{}, false
	}
	for _, stream := range streams {
		if stream.Disposition["default"] == 1 {
			return stream, true
		}
	}
	return streams[0], true
}

// DurationSeconds returns the container duration in seconds, falling back to
// the primary audio stream, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	if d := parseFloat(r.Format.Duration); d > 0 {
		return d
	}
	if stream, ok := r.PrimaryAudio(); ok {
		if d := parseFloat(stream.Duration); d > 0 {
			return d
		}
	}
	return 0
}

// SampleRateHz returns the stream's native sample rate, or 0 when unknown.
func (s Stream) SampleRateHz() int {
	rate := parseFloat(s.SampleRate)
	if rate <= 0 {
		return 0
	}
	return int(rate)
}

// Language returns the stream's language tag, lowercased.
func (s Stream) Language() string {
	for _, key := range []string{"language", "LANGUAGE", "lang"} {
		if value := strings.TrimSpace(s.Tags[key]); value != "" {
			return strings.ToLower(value)
		}
	}
	return ""
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0
	}
	return parsed
}
