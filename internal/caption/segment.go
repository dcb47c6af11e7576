package caption

import (
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// Segment is one timed caption or translation unit.
type Segment struct {
	ID    string  `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 {
	return s.End - s.Start
}

// IDSource hands out opaque unique segment identifiers.
type IDSource interface {
	NewID() string
}

// UUIDSource issues random UUIDv4 identifiers.
type UUIDSource struct{}

// NewID returns a fresh random UUID string.
func (UUIDSource) NewID() string {
	return uuid.NewString()
}

// SequenceSource issues deterministic identifiers ("seg-1", "seg-2", ...).
type SequenceSource struct {
	Prefix string
	next   atomic.Int64
}

// NewID returns the next identifier in sequence. It is safe for concurrent use.
func (s *SequenceSource) NewID() string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "seg-"
	}
	return prefix + strconv.FormatInt(s.next.Add(1), 10)
}

// CleanText trims surrounding whitespace and normalizes to NFC so captions
// compare equal regardless of how the producer composed accents.
func CleanText(text string) string {
	return strings.TrimSpace(norm.NFC.String(text))
}
