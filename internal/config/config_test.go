package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"captioner/internal/config"
	"captioner/internal/services"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "captioner", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "captioner")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.SessionDBPath() != filepath.Join(wantData, "sessions.db") {
		t.Fatalf("unexpected session db path %q", cfg.SessionDBPath())
	}
	if cfg.LLM.RetryAttempts != 1 {
		t.Fatalf("expected single attempt by default, got %d", cfg.LLM.RetryAttempts)
	}
	if cfg.Captions.Mode != config.ModeTranslate {
		t.Fatalf("unexpected default mode %q", cfg.Captions.Mode)
	}
	if cfg.Captions.MaxSegmentChars != 70 || cfg.Captions.MaxLines != 2 || cfg.Captions.MaxLineChars != 35 {
		t.Fatalf("unexpected formatting defaults: %+v", cfg.Captions)
	}
	if cfg.Audio.TransportChunkBytes != 32*1024 {
		t.Fatalf("unexpected chunk size %d", cfg.Audio.TransportChunkBytes)
	}
	if cfg.LLM.APIKey != "" {
		t.Fatalf("expected empty api key, got %q", cfg.LLM.APIKey)
	}
}

func TestLoadDoesNotRequireAPIKey(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CAPTIONER_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Chdir(t.TempDir())

	if _, _, _, err := config.Load(""); err != nil {
		t.Fatalf("Load returned error without credential: %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(t.TempDir(), "captioner.toml")
	content := `
[paths]
data_dir = "~/captions"
log_dir = ""

[llm]
api_key = "  file-key  "
model = "openai/gpt-4o-audio-preview"

[captions]
mode = "Caption"
target_language = "spanish"

[logging]
format = "JSON"
level = "DEBUG"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.DataDir != filepath.Join(tempHome, "captions") {
		t.Fatalf("unexpected data dir %q", cfg.Paths.DataDir)
	}
	if cfg.Paths.LogDir != "" {
		t.Fatalf("expected empty log dir, got %q", cfg.Paths.LogDir)
	}
	if cfg.LLM.APIKey != "file-key" {
		t.Fatalf("expected trimmed api key, got %q", cfg.LLM.APIKey)
	}
	if cfg.LLM.BaseURL != config.Default().LLM.BaseURL {
		t.Fatalf("expected default base url, got %q", cfg.LLM.BaseURL)
	}
	if cfg.Captions.Mode != config.ModeCaption {
		t.Fatalf("expected lowercased mode, got %q", cfg.Captions.Mode)
	}
	if cfg.Captions.TargetLanguage != "es" {
		t.Fatalf("expected normalized language, got %q", cfg.Captions.TargetLanguage)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("unexpected logging config %+v", cfg.Logging)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "captioner.toml")
	if err := os.WriteFile(configPath, []byte("[llm]\nmodle = \"typo\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestDataDirEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	override := t.TempDir()
	t.Setenv("CAPTIONER_DATA_DIR", override)
	t.Chdir(t.TempDir())

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.DataDir != override {
		t.Fatalf("expected env data dir %q, got %q", override, cfg.Paths.DataDir)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]func(*config.Config){
		"mode":        func(c *config.Config) { c.Captions.Mode = "dub" },
		"max_lines":   func(c *config.Config) { c.Captions.MaxLines = 0 },
		"line_vs_seg": func(c *config.Config) { c.Captions.MaxLineChars = 80 },
		"gap":         func(c *config.Config) { c.Captions.GapThresholdSeconds = 0 },
		"base_url":    func(c *config.Config) { c.LLM.BaseURL = "not a url" },
		"retries":     func(c *config.Config) { c.LLM.RetryAttempts = -1 },
		"chunk":       func(c *config.Config) { c.Audio.TransportChunkBytes = -5 },
		"log_format":  func(c *config.Config) { c.Logging.Format = "xml" },
		"log_level":   func(c *config.Config) { c.Logging.Level = "verbose" },
		"data_dir":    func(c *config.Config) { c.Paths.DataDir = "" },
		"timeout":     func(c *config.Config) { c.LLM.TimeoutSeconds = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error for %s", name)
			}
		})
	}
}

func TestCreateSampleProducesLoadableConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var parsed config.Config
	if err := toml.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("sample config is not valid TOML: %v", err)
	}
	if parsed.Captions.MaxLineChars != 35 {
		t.Fatalf("unexpected sample max_line_chars %d", parsed.Captions.MaxLineChars)
	}
	if !strings.Contains(string(data), "CAPTIONER_API_KEY") {
		t.Fatal("expected sample to document the credential environment variable")
	}

	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("Load(sample) returned error: %v", err)
	}
}

func TestEnsureDirectories(t *testing.T) {
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories returned error: %v", err)
	}
	for _, dir := range []string{cfg.Paths.DataDir, cfg.LockDir(), cfg.Paths.LogDir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}

func TestLoadHonorsConfigPathEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "alt.toml")
	if err := os.WriteFile(path, []byte("[captions]\nmode = \"caption\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(config.ConfigPathEnv, path)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != path || !exists {
		t.Fatalf("expected %s to be loaded, got %q exists=%v", path, resolved, exists)
	}
	if cfg.Captions.Mode != config.ModeCaption {
		t.Fatalf("expected caption mode from env config, got %q", cfg.Captions.Mode)
	}
}

func TestLoadErrorsAreConfigurationErrors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("[llm]\nmodel = \n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, _, err := config.Load(path)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), path+":2:") {
		t.Fatalf("expected position in error, got %v", err)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("CAPTIONER_TEST_DIR", "media")

	cases := map[string]string{
		"~":                          home,
		"~/clips/a.mkv":              filepath.Join(home, "clips", "a.mkv"),
		"/tmp/$CAPTIONER_TEST_DIR/x": "/tmp/media/x",
		"/tmp/a/../b":                "/tmp/b",
		"":                           "",
	}
	for in, want := range cases {
		got, err := config.ExpandPath(in)
		if err != nil {
			t.Fatalf("ExpandPath(%q) returned error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ExpandPath(%q) = %q, want %q", in, got, want)
		}
	}
}
