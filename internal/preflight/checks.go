package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"captioner/internal/config"
	"captioner/internal/deps"
	"captioner/internal/services/llm"
)

// CheckLLM verifies that the model API is reachable and the key is valid.
// It uses a 30-second timeout and a single attempt.
func CheckLLM(ctx context.Context, name string, cfg config.LLM) Result {
	creds := llm.DefaultCredentials(cfg.APIKey)
	if _, err := creds.APIKey(); err != nil {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := llm.NewClient(llm.Config{
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Referer: cfg.Referer,
		Title:   cfg.Title,
	}, creds, llm.WithRetryMaxAttempts(1))

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("API reachable (%s)", cfg.Model)}
}

// CheckCredential reports where the API key would be read from without
// contacting the API.
func CheckCredential(cfg config.LLM) Result {
	const name = "API key"
	if cfg.APIKey != "" {
		return Result{Name: name, Passed: true, Detail: "configured in llm.api_key"}
	}
	for _, env := range llm.CredentialEnv() {
		if _, err := (llm.EnvCredential{env}).APIKey(); err == nil {
			return Result{Name: name, Passed: true, Detail: "from $" + env}
		}
	}
	return Result{Name: name, Detail: "not set (llm.api_key, $CAPTIONER_API_KEY, or $OPENROUTER_API_KEY)"}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external binaries for the given config.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	return deps.CheckBinaries(deps.MediaRequirements(cfg.FFmpegBinary(), cfg.FFprobeBinary()))
}

// summarizeLLMError produces a human-readable summary for health check failures.
func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (API unreachable)"
	}
	return err.Error()
}
