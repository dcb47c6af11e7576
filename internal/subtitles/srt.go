package subtitles

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"captioner/internal/caption"
	"captioner/internal/fileutil"
	"captioner/internal/services"
	"captioner/internal/timecode"
)

const cueArrow = "-->"

var blankLine = regexp.MustCompile(`\n[ \t]*\n`)

// EncodeSRT renders segments as numbered SRT cues separated by blank lines.
func EncodeSRT(segments []caption.Segment) string {
	var b strings.Builder
	for i, seg := range segments {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteByte('\n')
		b.WriteString(timecode.FormatSRT(seg.Start))
		b.WriteString(" " + cueArrow + " ")
		b.WriteString(timecode.FormatSRT(seg.End))
		b.WriteByte('\n')
		b.WriteString(strings.TrimSpace(seg.Text))
		b.WriteByte('\n')
	}
	return b.String()
}

// DecodeSRT parses SRT content into segments with fresh identifiers. Blocks
// with fewer than three lines are skipped. A malformed timing line, or a
// file with no usable cues, yields services.ErrSubtitleParse.
func DecodeSRT(content string, ids caption.IDSource) ([]caption.Segment, error) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	normalized = strings.TrimPrefix(normalized, "\ufeff")

	var segments []caption.Segment
	for _, block := range splitBlocks(normalized) {
		lines := strings.Split(block, "\n")
		if len(lines) < 3 {
			continue
		}
		start, end, err := parseTiming(lines[1])
		if err != nil {
			return nil, services.Wrap(services.ErrSubtitleParse, "import", fmt.Sprintf("cue %d", len(segments)+1), "", err)
		}
		text := make([]string, 0, len(lines)-2)
		for _, line := range lines[2:] {
			if trimmed := strings.TrimSpace(line); trimmed != "" {
				text = append(text, trimmed)
			}
		}
		segments = append(segments, caption.Segment{
			ID:    ids.NewID(),
			Start: start,
			End:   end,
			Text:  strings.Join(text, " "),
		})
	}
	if len(segments) == 0 {
		return nil, services.Wrap(services.ErrSubtitleParse, "import", "", "no cues found", nil)
	}
	return segments, nil
}

func splitBlocks(content string) []string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil
	}
	blocks := blankLine.Split(trimmed, -1)
	out := blocks[:0]
	for _, block := range blocks {
		if block = strings.TrimSpace(block); block != "" {
			out = append(out, block)
		}
	}
	return out
}

// parseTiming reads "start --> end", ignoring any cue settings after the end
// timestamp.
func parseTiming(line string) (float64, float64, error) {
	startText, endText, ok := strings.Cut(line, cueArrow)
	if !ok {
		return 0, 0, fmt.Errorf("timing line %q has no %q", strings.TrimSpace(line), cueArrow)
	}
	endFields := strings.Fields(endText)
	if strings.TrimSpace(startText) == "" || len(endFields) == 0 {
		return 0, 0, fmt.Errorf("timing line %q is incomplete", strings.TrimSpace(line))
	}
	start, err := timecode.Parse(startText)
	if err != nil {
		return 0, 0, err
	}
	end, err := timecode.Parse(endFields[0])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// ReadSRTFile decodes the SRT file at path.
func ReadSRTFile(path string, ids caption.IDSource) ([]caption.Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrNotFound, "import", "read", path, err)
		}
		return nil, services.Wrap(services.ErrSubtitleParse, "import", "read", path, err)
	}
	return DecodeSRT(string(data), ids)
}

// WriteSRTFile writes segments to path, replacing it atomically.
func WriteSRTFile(path string, segments []caption.Segment) error {
	if err := fileutil.WriteFileAtomic(path, []byte(EncodeSRT(segments)), 0o644); err != nil {
		return fmt.Errorf("write subtitle: %w", err)
	}
	return nil
}
