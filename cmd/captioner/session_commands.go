package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"captioner/internal/language"
	"captioner/internal/session"
)

func newSessionsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List caption sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *session.Store) error {
				sessions, err := store.List(cmd.Context())
				if err != nil {
					return err
				}
				if jsonOutput {
					if sessions == nil {
						sessions = []*session.Session{}
					}
					return writeJSON(cmd, sessions)
				}
				out := cmd.OutOrStdout()
				if len(sessions) == 0 {
					fmt.Fprintln(out, "No sessions")
					return nil
				}
				fmt.Fprintln(out, renderSessionTable(sessions))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.AddCommand(newSessionRemoveCommand(ctx))
	return cmd
}

func renderSessionTable(sessions []*session.Session) string {
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		lang := "-"
		if s.Language != "" {
			lang = language.DisplayName(s.Language)
		}
		rows = append(rows, []string{
			s.Name,
			fmt.Sprintf("%d", s.SegmentCount),
			valueOrDash(string(s.Source)),
			valueOrDash(s.Mode),
			lang,
			s.UpdatedAt.Local().Format(time.DateTime),
		})
	}
	return renderTable(
		[]string{"Session", "Segments", "Source", "Mode", "Language", "Updated"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
	)
}

func newSessionRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"remove"},
		Short:   "Delete a session and its segments",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *session.Store) error {
				if err := store.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed session %q\n", args[0])
				return nil
			})
		},
	}
}

func valueOrDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
