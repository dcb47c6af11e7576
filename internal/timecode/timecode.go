package timecode

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformed reports a timestamp that is neither MM:SS.mmm nor HH:MM:SS.mmm.
var ErrMalformed = errors.New("malformed timestamp")

// Parse converts "MM:SS.mmm" or "HH:MM:SS{.,}mmm" into seconds. An empty
// string yields zero; anything else that does not parse is an error.
func Parse(value string) (float64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}
	parts := strings.Split(strings.ReplaceAll(trimmed, ",", "."), ":")

	var hours, minutes float64
	var secondsPart string
	var err error
	switch len(parts) {
	case 3:
		if hours, err = parseWhole(parts[0]); err != nil {
			return 0, fmt.Errorf("%w %q: hours: %w", ErrMalformed, value, err)
		}
		if minutes, err = parseWhole(parts[1]); err != nil {
			return 0, fmt.Errorf("%w %q: minutes: %w", ErrMalformed, value, err)
		}
		secondsPart = parts[2]
	case 2:
		if minutes, err = parseWhole(parts[0]); err != nil {
			return 0, fmt.Errorf("%w %q: minutes: %w", ErrMalformed, value, err)
		}
		secondsPart = parts[1]
	default:
		return 0, fmt.Errorf("%w %q: expected 2 or 3 fields, got %d", ErrMalformed, value, len(parts))
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(secondsPart), 64)
	if err != nil {
		return 0, fmt.Errorf("%w %q: seconds: %w", ErrMalformed, value, err)
	}
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("%w %q: seconds out of range", ErrMalformed, value)
	}
	return hours*3600 + minutes*60 + seconds, nil
}

func parseWhole(field string) (float64, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(field), 10, 32)
	if err != nil {
		return 0, err
	}
	return float64(n), nil
}

// FormatSRT renders seconds as "HH:MM:SS,mmm", rounded to the nearest
// millisecond. Negative input is clamped to zero.
func FormatSRT(seconds float64) string {
	h, m, s, ms := split(seconds)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// FormatClock renders seconds as "MM:SS.mmm" with minutes allowed to exceed 59.
func FormatClock(seconds float64) string {
	h, m, s, ms := split(seconds)
	return fmt.Sprintf("%02d:%02d.%03d", h*60+m, s, ms)
}

func split(seconds float64) (h, m, s, ms int64) {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(math.Round(seconds * 1000))
	ms = total % 1000
	total /= 1000
	s = total % 60
	total /= 60
	m = total % 60
	h = total / 60
	return h, m, s, ms
}
