package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"captioner/internal/deps"
	"captioner/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var ping bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, external binaries, and model API access",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Environment", colorize) {
				fmt.Fprintln(out, line)
			}
			results := preflight.RunAll(cmd.Context(), cfg, ping)
			for _, line := range preflightLines(results, colorize) {
				fmt.Fprintln(out, line)
			}
			if line := missingDependencyLine(preflight.CheckSystemDeps(cfg), colorize); line != "" {
				fmt.Fprintln(out, line)
			}

			if preflight.Failed(results) {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&ping, "ping", false, "Also send a test request to the model API")
	return cmd
}

func preflightLines(results []preflight.Result, colorize bool) []string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		kind := statusOK
		if !r.Passed {
			kind = statusError
		}
		lines = append(lines, renderStatusLine(r.Name, kind, r.Detail, colorize))
	}
	return lines
}

func missingDependencyLine(statuses []deps.Status, colorize bool) string {
	missing := deps.Missing(statuses)
	if len(missing) == 0 {
		return ""
	}
	names := make([]string, 0, len(missing))
	for _, s := range missing {
		names = append(names, s.Command)
	}
	return renderStatusLine("Missing", statusError, strings.Join(names, ", "), colorize)
}
