package preflight

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"captioner/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail %q", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckCredentialSources(t *testing.T) {
	t.Setenv("CAPTIONER_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")
	if result := CheckCredential(config.LLM{}); result.Passed {
		t.Fatal("expected missing credential to fail")
	}

	t.Setenv("OPENROUTER_API_KEY", "env-key")
	result := CheckCredential(config.LLM{})
	if !result.Passed || !strings.Contains(result.Detail, "OPENROUTER_API_KEY") {
		t.Fatalf("expected env credential, got %+v", result)
	}

	result = CheckCredential(config.LLM{APIKey: "cfg"})
	if !result.Passed || !strings.Contains(result.Detail, "llm.api_key") {
		t.Fatalf("expected config credential, got %+v", result)
	}
}

func TestCheckLLM(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []any{map[string]any{"message": map[string]any{"content": `{"ok":true}`}}},
		})
	}))
	defer srv.Close()

	ok := CheckLLM(context.Background(), "Model API", config.LLM{APIKey: "good", BaseURL: srv.URL, Model: "demo"})
	if !ok.Passed {
		t.Fatalf("expected pass, got %s", ok.Detail)
	}
	bad := CheckLLM(context.Background(), "Model API", config.LLM{APIKey: "bad", BaseURL: srv.URL, Model: "demo"})
	if bad.Passed || !strings.Contains(bad.Detail, "401") {
		t.Fatalf("expected 401 failure, got %+v", bad)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(context.Background(), nil, false); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_LocalChecks(t *testing.T) {
	binDir := t.TempDir()
	for _, name := range []string{"ffmpeg", "ffprobe"} {
		if err := os.WriteFile(filepath.Join(binDir, name), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("PATH", binDir)

	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Paths.LogDir = t.TempDir()
	cfg.LLM.APIKey = "key"

	results := RunAll(context.Background(), &cfg, false)
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d: %+v", len(results), results)
	}
	if Failed(results) {
		t.Fatalf("expected all checks to pass: %+v", results)
	}
}
