package subtitles

import (
	"errors"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"captioner/internal/caption"
	"captioner/internal/services"
)

func TestEncodeSRT(t *testing.T) {
	segments := []caption.Segment{
		{ID: "a", Start: 1, End: 2.5, Text: "  Hello there  "},
		{ID: "b", Start: 62.5, End: 3723.25, Text: "General Kenobi"},
	}
	want := "1\n00:00:01,000 --> 00:00:02,500\nHello there\n" +
		"\n" +
		"2\n00:01:02,500 --> 01:02:03,250\nGeneral Kenobi\n"
	if got := EncodeSRT(segments); got != want {
		t.Fatalf("EncodeSRT mismatch:\n got %q\nwant %q", got, want)
	}
	if got := EncodeSRT(nil); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestDecodeSRT(t *testing.T) {
	content := "\ufeff1\r\n00:00:01,000 --> 00:00:02,500\r\nHello\r\nthere\r\n\r\n" +
		"2\r\n00:00:03.000 --> 00:00:04,000 X1:100 X2:200\r\nSecond\r\n\r\n\r\n" +
		"orphan\r\n\r\n" +
		"3\n00:00:05,000 --> 00:00:06,000\n  Third  \n"
	segments, err := DecodeSRT(content, &caption.SequenceSource{})
	if err != nil {
		t.Fatalf("DecodeSRT returned error: %v", err)
	}
	want := []caption.Segment{
		{ID: "seg-1", Start: 1, End: 2.5, Text: "Hello there"},
		{ID: "seg-2", Start: 3, End: 4, Text: "Second"},
		{ID: "seg-3", Start: 5, End: 6, Text: "Third"},
	}
	if len(segments) != len(want) {
		t.Fatalf("expected %d segments, got %d: %+v", len(want), len(segments), segments)
	}
	for i := range want {
		if segments[i] != want[i] {
			t.Fatalf("segment %d = %+v, want %+v", i, segments[i], want[i])
		}
	}
}

func TestDecodeSRTErrors(t *testing.T) {
	tests := map[string]string{
		"empty":           "",
		"only short":      "1\n00:00:01,000 --> 00:00:02,000\n\n2\n",
		"missing arrow":   "1\n00:00:01,000 00:00:02,000\nText\n",
		"bad timestamp":   "1\nab:cd --> 00:00:02,000\nText\n",
		"missing end":     "1\n00:00:01,000 -->\nText\n",
		"whitespace only": "\n\n   \n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := DecodeSRT(content, &caption.SequenceSource{}); !errors.Is(err, services.ErrSubtitleParse) {
				t.Fatalf("expected ErrSubtitleParse, got %v", err)
			}
		})
	}
}

func TestSRTRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	words := []string{"alpha", "beta", "gamma", "delta", "épsilon", "zeta", "日本語"}
	for trial := 0; trial < 50; trial++ {
		var segments []caption.Segment
		cursor := rng.Float64() * 5
		count := 1 + rng.IntN(20)
		for i := 0; i < count; i++ {
			length := 0.2 + rng.Float64()*4
			var text []string
			for w := 0; w < 1+rng.IntN(6); w++ {
				text = append(text, words[rng.IntN(len(words))])
			}
			segments = append(segments, caption.Segment{
				ID:    "orig",
				Start: cursor,
				End:   cursor + length,
				Text:  strings.Join(text, " "),
			})
			cursor += length + rng.Float64()*2
		}

		decoded, err := DecodeSRT(EncodeSRT(segments), &caption.SequenceSource{})
		if err != nil {
			t.Fatalf("trial %d: DecodeSRT returned error: %v", trial, err)
		}
		if len(decoded) != len(segments) {
			t.Fatalf("trial %d: expected %d segments, got %d", trial, len(segments), len(decoded))
		}
		for i := range segments {
			if decoded[i].Text != segments[i].Text {
				t.Fatalf("trial %d segment %d text %q, want %q", trial, i, decoded[i].Text, segments[i].Text)
			}
			if math.Abs(decoded[i].Start-segments[i].Start) > 0.0005+1e-9 ||
				math.Abs(decoded[i].End-segments[i].End) > 0.0005+1e-9 {
				t.Fatalf("trial %d segment %d times drifted: %+v vs %+v", trial, i, decoded[i], segments[i])
			}
			if decoded[i].ID == "orig" {
				t.Fatalf("expected fresh identifier, got %q", decoded[i].ID)
			}
		}
	}
}

func TestWriteAndReadSRTFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "captions.srt")
	segments := []caption.Segment{{Start: 0.5, End: 1.75, Text: "hi"}}
	if err := WriteSRTFile(path, segments); err != nil {
		t.Fatalf("WriteSRTFile returned error: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Fatalf("unexpected mode %v", info.Mode())
	}
	decoded, err := ReadSRTFile(path, &caption.SequenceSource{})
	if err != nil {
		t.Fatalf("ReadSRTFile returned error: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Text != "hi" || decoded[0].Start != 0.5 || decoded[0].End != 1.75 {
		t.Fatalf("unexpected decoded segments %+v", decoded)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp file cleanup, found %d entries", len(entries))
	}
}

func TestReadSRTFileMissing(t *testing.T) {
	_, err := ReadSRTFile(filepath.Join(t.TempDir(), "nope.srt"), &caption.SequenceSource{})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
