package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// Caption pipeline failure kinds. Each one is terminal for the request that
// produced it; nothing is retried automatically.
var (
	ErrMissingCredential = errors.New("missing api credential")
	ErrAudioDecode       = errors.New("audio decode failure")
	ErrEmptyResponse     = errors.New("empty model response")
	ErrPayloadParse      = errors.New("model payload parse failure")
	ErrNoSpeech          = errors.New("no speech detected")
	ErrSubtitleParse     = errors.New("subtitle file parse failure")
	ErrSessionBusy       = errors.New("session busy")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later status classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// StatusMessage maps a pipeline error to the short message shown to the user.
func StatusMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingCredential):
		return "No API key configured. Set CAPTIONER_API_KEY or llm.api_key and try again."
	case errors.Is(err, ErrAudioDecode):
		return "Could not decode the audio track. Try a different file."
	case errors.Is(err, ErrEmptyResponse):
		return "The model returned an empty response."
	case errors.Is(err, ErrPayloadParse):
		return "Could not parse the model response. The audio may be too long, noisy, or complex."
	case errors.Is(err, ErrNoSpeech):
		return "No speech detected in the audio."
	case errors.Is(err, ErrSubtitleParse):
		return "Could not parse the subtitle file."
	case errors.Is(err, ErrSessionBusy):
		return "Another operation is already running for this session."
	case errors.Is(err, ErrNotFound):
		return "Not found: " + lastDetail(err)
	case errors.Is(err, ErrConfiguration):
		return "Configuration problem: " + lastDetail(err)
	default:
		return err.Error()
	}
}

// lastDetail drops the marker prefix so the remainder reads as a sentence.
func lastDetail(err error) string {
	msg := err.Error()
	if idx := strings.Index(msg, ": "); idx >= 0 {
		return msg[idx+2:]
	}
	return msg
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
