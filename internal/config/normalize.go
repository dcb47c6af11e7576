package config

import (
	"fmt"
	"os"
	"strings"

	"captioner/internal/language"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeAudio()
	if err := c.normalizeCaptions(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if value, ok := os.LookupEnv("CAPTIONER_DATA_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.DataDir = strings.TrimSpace(value)
	}
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

// normalizeLLM fills connection defaults. The API key is deliberately left
// as configured; environment credentials are resolved per request.
func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.Model == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if c.LLM.RetryAttempts == 0 {
		c.LLM.RetryAttempts = defaultLLMRetryAttempts
	}
}

func (c *Config) normalizeAudio() {
	c.Audio.FFmpegBinary = strings.TrimSpace(c.Audio.FFmpegBinary)
	if c.Audio.FFmpegBinary == "" {
		c.Audio.FFmpegBinary = defaultFFmpegBinary
	}
	c.Audio.FFprobeBinary = strings.TrimSpace(c.Audio.FFprobeBinary)
	if c.Audio.FFprobeBinary == "" {
		c.Audio.FFprobeBinary = defaultFFprobeBinary
	}
	if c.Audio.TransportChunkBytes == 0 {
		c.Audio.TransportChunkBytes = defaultTransportChunkBytes
	}
}

func (c *Config) normalizeCaptions() error {
	c.Captions.Mode = strings.ToLower(strings.TrimSpace(c.Captions.Mode))
	if c.Captions.Mode == "" {
		c.Captions.Mode = defaultCaptionMode
	}
	lang := strings.TrimSpace(c.Captions.TargetLanguage)
	if lang == "" {
		lang = defaultTargetLanguage
	}
	normalized, err := language.Normalize(lang)
	if err != nil {
		return fmt.Errorf("captions.target_language: %w", err)
	}
	c.Captions.TargetLanguage = normalized
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
