package preflight

import (
	"context"

	"captioner/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the local checks for the given config. The network check
// against the model API only runs when ping is set.
func RunAll(ctx context.Context, cfg *config.Config, ping bool) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
	}
	for _, status := range CheckSystemDeps(cfg) {
		detail := status.Command
		if !status.Available {
			detail = status.Detail
			if status.Optional {
				detail += " (optional)"
			}
		}
		results = append(results, Result{
			Name:   status.Name,
			Passed: status.Available || status.Optional,
			Detail: detail,
		})
	}

	llmCfg := config.LLM(cfg.GetLLM())
	results = append(results, CheckCredential(llmCfg))
	if ping {
		results = append(results, CheckLLM(ctx, "Model API", llmCfg))
	}
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
