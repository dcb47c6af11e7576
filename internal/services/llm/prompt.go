package llm

import (
	"fmt"
	"strings"

	"captioner/internal/language"
	"captioner/internal/timecode"
)

// Mode selects between translated and verbatim captions.
type Mode string

const (
	ModeTranslate Mode = "translate"
	ModeCaption   Mode = "caption"
)

// ParseMode validates a mode string.
func ParseMode(value string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(value))) {
	case ModeTranslate:
		return ModeTranslate, nil
	case ModeCaption:
		return ModeCaption, nil
	default:
		return "", fmt.Errorf("unknown caption mode %q (want %q or %q)", value, ModeTranslate, ModeCaption)
	}
}

// FormatRules are layout constraints the model is instructed to follow. They
// are not enforced on the response.
type FormatRules struct {
	MaxSegmentChars     int
	MaxLines            int
	MaxLineChars        int
	GapThresholdSeconds float64
}

// DefaultFormatRules returns the standard broadcast-style layout limits.
func DefaultFormatRules() FormatRules {
	return FormatRules{
		MaxSegmentChars:     70,
		MaxLines:            2,
		MaxLineChars:        35,
		GapThresholdSeconds: 1,
	}
}

// CaptionRequest is one caption generation call.
type CaptionRequest struct {
	AudioBase64     string
	DurationSeconds float64
	Mode            Mode
	TargetLanguage  string
	Rules           FormatRules
}

// BuildSystemPrompt renders the task and formatting instructions.
func BuildSystemPrompt(req CaptionRequest) string {
	rules := req.Rules
	if rules == (FormatRules{}) {
		rules = DefaultFormatRules()
	}
	gap := formatSeconds(rules.GapThresholdSeconds)

	var b strings.Builder
	switch req.Mode {
	case ModeCaption:
		b.WriteString("You are a professional captioner. Transcribe the speech in the attached audio verbatim, in the language it is spoken. Do not translate.\n")
	default:
		fmt.Fprintf(&b, "You are a professional subtitle translator. Transcribe the speech in the attached audio and translate it into %s.\n",
			language.DisplayName(req.TargetLanguage))
	}

	b.WriteString("\nTiming rules:\n")
	b.WriteString("- Start each segment at the voice onset: the instant the first audible syllable begins, not at the preceding silence or breath.\n")
	b.WriteString("- End each segment when the speech in it stops.\n")
	fmt.Fprintf(&b, "- If the silence before the next segment is shorter than %s seconds, extend this segment's end time to the next segment's start time.\n", gap)
	fmt.Fprintf(&b, "- If the silence before the next segment is %s seconds or longer, leave this segment's end at the actual end of speech so the screen is blank during the gap.\n", gap)
	b.WriteString("- Segments must be in chronological order and must not overlap.\n")
	fmt.Fprintf(&b, "- No timestamp may exceed the audio duration of %s.\n", timecode.FormatClock(req.DurationSeconds))

	b.WriteString("\nLayout rules:\n")
	fmt.Fprintf(&b, "- At most %d characters per segment.\n", rules.MaxSegmentChars)
	fmt.Fprintf(&b, "- At most %d lines per segment and at most %d characters per line; separate lines with \\n.\n", rules.MaxLines, rules.MaxLineChars)
	b.WriteString("- Split long sentences across segments at natural pauses or clause boundaries.\n")

	b.WriteString("\nOutput format:\n")
	b.WriteString(`- Respond with a JSON array only, no commentary: [{"start":"MM:SS.mmm","end":"MM:SS.mmm","text":"..."}]` + "\n")
	b.WriteString("- Timestamps use MM:SS.mmm with minutes allowed above 59, for example 01:02.500 or 75:10.250.\n")
	b.WriteString("- If there is no speech, respond with [].\n")
	return b.String()
}

// BuildUserPrompt renders the per-request text that accompanies the audio.
func BuildUserPrompt(req CaptionRequest) string {
	action := "Caption"
	if req.Mode != ModeCaption {
		action = "Transcribe and translate"
	}
	return fmt.Sprintf("%s this audio. Duration: %s seconds (%s).",
		action, formatSeconds(req.DurationSeconds), timecode.FormatClock(req.DurationSeconds))
}

func formatSeconds(v float64) string {
	s := fmt.Sprintf("%.3f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
