package transcript

import (
	"encoding/json"
	"fmt"
	"strings"

	"captioner/internal/caption"
	"captioner/internal/services"
	"captioner/internal/textutil"
	"captioner/internal/timecode"
)

// Record is one caption entry as emitted by the model, before timestamp
// conversion.
type Record struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Text  string `json:"text"`
}

type wireRecord struct {
	Start *string `json:"start"`
	End   *string `json:"end"`
	Text  *string `json:"text"`
}

// ParseRecords recovers and decodes the record array from a raw model
// response. A response with no recoverable array yields an empty slice and
// no error; a recovered slice that is not a valid record array yields
// services.ErrPayloadParse.
func ParseRecords(raw string) ([]Record, error) {
	payload := RecoverPayload(raw)
	if payload == "" {
		return nil, nil
	}

	var wire []wireRecord
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		return nil, services.Wrap(services.ErrPayloadParse, "interpret", "decode", textutil.Snippet(payload, 120), err)
	}

	records := make([]Record, 0, len(wire))
	for i, w := range wire {
		if w.Start == nil || w.End == nil || w.Text == nil {
			return nil, services.Wrap(services.ErrPayloadParse, "interpret", "decode",
				fmt.Sprintf("record %d: start, end, and text are required", i+1), nil)
		}
		records = append(records, Record{Start: *w.Start, End: *w.End, Text: *w.Text})
	}
	return records, nil
}

// Interpret converts a raw model response into timed segments in the order
// received, assigning each a fresh identifier from ids.
func Interpret(raw string, ids caption.IDSource) ([]caption.Segment, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, services.Wrap(services.ErrEmptyResponse, "interpret", "", "", nil)
	}
	records, err := ParseRecords(raw)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, services.Wrap(services.ErrNoSpeech, "interpret", "", "model returned no records", nil)
	}

	segments := make([]caption.Segment, 0, len(records))
	for i, rec := range records {
		start, err := timecode.Parse(rec.Start)
		if err != nil {
			return nil, services.Wrap(services.ErrPayloadParse, "interpret", fmt.Sprintf("record %d", i+1), "start", err)
		}
		end, err := timecode.Parse(rec.End)
		if err != nil {
			return nil, services.Wrap(services.ErrPayloadParse, "interpret", fmt.Sprintf("record %d", i+1), "end", err)
		}
		if end < start {
			end = start
		}
		segments = append(segments, caption.Segment{
			ID:    ids.NewID(),
			Start: start,
			End:   end,
			Text:  caption.CleanText(rec.Text),
		})
	}
	return segments, nil
}
