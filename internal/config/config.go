package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"captioner/internal/services"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// LLM contains the caption model connection settings.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	// RetryAttempts is the total number of attempts per request. The default
	// of 1 disables retries.
	RetryAttempts int `toml:"retry_attempts"`
}

// Audio contains the external decoder settings used by the normalizer.
type Audio struct {
	FFmpegBinary        string `toml:"ffmpeg_binary"`
	FFprobeBinary       string `toml:"ffprobe_binary"`
	TransportChunkBytes int    `toml:"transport_chunk_bytes"`
}

// Captions contains the defaults and formatting rules sent to the model.
type Captions struct {
	Mode                string  `toml:"mode"`
	TargetLanguage      string  `toml:"target_language"`
	MaxSegmentChars     int     `toml:"max_segment_chars"`
	MaxLines            int     `toml:"max_lines"`
	MaxLineChars        int     `toml:"max_line_chars"`
	GapThresholdSeconds float64 `toml:"gap_threshold_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for captioner.
//
// Configuration sections by subsystem:
//   - Paths: session database and log directories
//   - LLM: caption model endpoint, model, and credential
//   - Audio: ffmpeg/ffprobe binaries and transport encoding chunk size
//   - Captions: default mode, target language, and formatting rules
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	LLM      LLM      `toml:"llm"`
	Audio    Audio    `toml:"audio"`
	Captions Captions `toml:"captions"`
	Logging  Logging  `toml:"logging"`
}

// ConfigPathEnv overrides the config file location when no path is passed.
const ConfigPathEnv = "CAPTIONER_CONFIG"

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, normalizes, and validates the configuration. It
// returns the resolved path and whether a file existed there; a missing file
// yields defaults. Failures carry services.ErrConfiguration.
func Load(path string) (*Config, string, bool, error) {
	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, services.Wrap(services.ErrConfiguration, "config", "resolve path", "", err)
	}

	cfg := Default()
	if exists {
		if err := decodeFile(resolved, &cfg); err != nil {
			return nil, "", false, services.Wrap(services.ErrConfiguration, "config", "parse", "", err)
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, services.Wrap(services.ErrConfiguration, "config", "normalize", "", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, services.Wrap(services.ErrConfiguration, "config", "validate", "", err)
	}
	return &cfg, resolved, exists, nil
}

// decodeFile reads a TOML file strictly: unknown keys are errors so typos do
// not silently fall back to defaults.
func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	err = decoder.Decode(cfg)

	var strictErr *toml.StrictMissingError
	if errors.As(err, &strictErr) {
		return fmt.Errorf("%s: unknown keys:\n%s", path, strictErr.String())
	}
	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		row, col := decodeErr.Position()
		return fmt.Errorf("%s:%d:%d: %s", path, row, col, decodeErr.Error())
	}
	return err
}

// resolveConfigPath picks, in order: the explicit path, $CAPTIONER_CONFIG,
// the user config file, then ./captioner.toml. When none exists the user
// config path is reported as the location defaults stand in for.
func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = strings.TrimSpace(os.Getenv(ConfigPathEnv))
	}
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		exists, err := isFile(expanded)
		return expanded, exists, err
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("captioner.toml")
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{defaultPath, projectPath} {
		if ok, _ := isFile(candidate); ok {
			return candidate, true, nil
		}
	}
	return defaultPath, false, nil
}

func isFile(path string) (bool, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("stat config: %w", err)
	case info.IsDir():
		return false, fmt.Errorf("config path %s is a directory", path)
	}
	return true, nil
}

// EnsureDirectories creates the data, lock, and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.LockDir(), c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SessionDBPath returns the SQLite database holding caption sessions.
func (c *Config) SessionDBPath() string {
	return filepath.Join(c.Paths.DataDir, "sessions.db")
}

// LockDir returns the directory holding per-session lock files.
func (c *Config) LockDir() string {
	return filepath.Join(c.Paths.DataDir, "locks")
}

// FFmpegBinary returns the ffmpeg executable used for audio decoding.
func (c *Config) FFmpegBinary() string {
	if strings.TrimSpace(c.Audio.FFmpegBinary) == "" {
		return defaultFFmpegBinary
	}
	return c.Audio.FFmpegBinary
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	if strings.TrimSpace(c.Audio.FFprobeBinary) == "" {
		return defaultFFprobeBinary
	}
	return c.Audio.FFprobeBinary
}

// expandPath resolves $VAR references and a leading ~ and returns a clean
// absolute path. An empty value stays empty.
func expandPath(pathValue string) (string, error) {
	pathValue = os.ExpandEnv(strings.TrimSpace(pathValue))
	if pathValue == "" {
		return "", nil
	}
	if pathValue == "~" || strings.HasPrefix(pathValue, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		pathValue = filepath.Join(home, pathValue[1:])
	}
	absolute, err := filepath.Abs(pathValue)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains the caption model client settings.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
	RetryAttempts  int
}

// GetLLM returns the caption model connection settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(c.LLM.Model),
		Referer:        strings.TrimSpace(c.LLM.Referer),
		Title:          strings.TrimSpace(c.LLM.Title),
		TimeoutSeconds: c.LLM.TimeoutSeconds,
		RetryAttempts:  c.LLM.RetryAttempts,
	}
}
