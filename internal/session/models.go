package session

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"captioner/internal/services"
)

// Source records how a session's current segments were produced.
type Source string

const (
	SourceGenerate Source = "generate"
	SourceImport   Source = "import"
)

// Session is a named, persisted caption working set.
type Session struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	MediaPath     string    `json:"media_path,omitempty"`
	Source        Source    `json:"source,omitempty"`
	Mode          string    `json:"mode,omitempty"`
	Language      string    `json:"language,omitempty"`
	Model         string    `json:"model,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	SegmentCount  int       `json:"segment_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	GeneratedAt   time.Time `json:"generated_at,omitzero"`
}

// Generation describes the run that produced a replacement segment list.
type Generation struct {
	Source        Source
	MediaPath     string
	Mode          string
	Language      string
	Model         string
	CorrelationID string
}

// ValidateName rejects names that are blank or contain control characters or
// path separators.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return services.Wrap(services.ErrValidation, "session", "validate name", "session name required", nil)
	}
	if len(trimmed) > 128 {
		return services.Wrap(services.ErrValidation, "session", "validate name", "session name too long", nil)
	}
	for _, r := range trimmed {
		if r == '/' || r == '\\' || unicode.IsControl(r) {
			return services.Wrap(services.ErrValidation, "session", "validate name", fmt.Sprintf("invalid character %q in session name", r), nil)
		}
	}
	return nil
}
