package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateCaptions(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateLLM() error {
	parsed, err := url.Parse(c.LLM.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("llm.base_url must be an absolute URL, got %q", c.LLM.BaseURL)
	}
	if err := ensurePositiveMap(map[string]int{
		"llm.timeout_seconds": c.LLM.TimeoutSeconds,
		"llm.retry_attempts":  c.LLM.RetryAttempts,
	}); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.TransportChunkBytes <= 0 {
		return errors.New("audio.transport_chunk_bytes must be positive")
	}
	return nil
}

func (c *Config) validateCaptions() error {
	switch c.Captions.Mode {
	case ModeTranslate, ModeCaption:
	default:
		return fmt.Errorf("captions.mode must be %q or %q, got %q", ModeTranslate, ModeCaption, c.Captions.Mode)
	}
	if err := ensurePositiveMap(map[string]int{
		"captions.max_segment_chars": c.Captions.MaxSegmentChars,
		"captions.max_lines":         c.Captions.MaxLines,
		"captions.max_line_chars":    c.Captions.MaxLineChars,
	}); err != nil {
		return err
	}
	if c.Captions.MaxLineChars > c.Captions.MaxSegmentChars {
		return errors.New("captions.max_line_chars must not exceed captions.max_segment_chars")
	}
	if c.Captions.GapThresholdSeconds <= 0 {
		return errors.New("captions.gap_threshold_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
