package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"captioner/internal/caption"
	"captioner/internal/config"
	"captioner/internal/session"
	"captioner/internal/subtitles"
	"captioner/internal/textutil"
	"captioner/internal/timecode"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.srt>",
		Short: "Replace the session's segments with the cues of an SRT file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *session.Store) error {
				svc, err := ctx.newService(store)
				if err != nil {
					return err
				}
				sess, segments, err := svc.Import(cmd.Context(), subtitles.ImportRequest{
					Session: ctx.sessionName(),
					Path:    path,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d segments into session %q\n", len(segments), sess.Name)
				return nil
			})
		},
	}
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the session's segments as an SRT file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ctx.sessionName()
			output := strings.TrimSpace(outputFlag)
			if output == "" {
				output = textutil.SessionFileName(name, ".srt")
			}
			output, err := config.ExpandPath(output)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *session.Store) error {
				svc, err := ctx.newService(store)
				if err != nil {
					return err
				}
				count, err := svc.Export(cmd.Context(), name, output)
				if err != nil {
					return err
				}
				abs, _ := filepath.Abs(output)
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d cues to %s\n", count, abs)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Destination SRT file (default <session>.srt)")
	return cmd
}

func newSegmentsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "segments",
		Short: "List the session's segments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *session.Store) error {
				sess, err := ctx.currentSession(cmd, store)
				if err != nil {
					return err
				}
				segments, err := store.Segments(cmd.Context(), sess.ID)
				if err != nil {
					return err
				}
				if jsonOutput {
					if segments == nil {
						segments = []caption.Segment{}
					}
					return writeJSON(cmd, segments)
				}
				out := cmd.OutOrStdout()
				if len(segments) == 0 {
					fmt.Fprintf(out, "Session %q has no segments\n", sess.Name)
					return nil
				}
				fmt.Fprintln(out, renderSegmentTable(segments))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func renderSegmentTable(segments []caption.Segment) string {
	rows := make([][]string, 0, len(segments))
	for i, seg := range segments {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			seg.ID,
			timecode.FormatClock(seg.Start),
			timecode.FormatClock(seg.End),
			seg.Text,
		})
	}
	return renderTable(
		[]string{"#", "ID", "Start", "End", "Text"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft},
	)
}

func newEditCommand(ctx *commandContext) *cobra.Command {
	var textFlag string

	cmd := &cobra.Command{
		Use:   "edit <segment-id>",
		Short: "Replace one segment's text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("text") {
				return errors.New("--text is required")
			}
			return ctx.withStore(func(store *session.Store) error {
				sess, err := ctx.currentSession(cmd, store)
				if err != nil {
					return err
				}
				if err := store.UpdateSegmentText(cmd.Context(), sess.ID, args[0], textFlag); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Updated segment %s\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&textFlag, "text", "t", "", "New segment text")
	return cmd
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <segment-id>",
		Short: "Remove one segment from the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *session.Store) error {
				sess, err := ctx.currentSession(cmd, store)
				if err != nil {
					return err
				}
				if err := store.DeleteSegment(cmd.Context(), sess.ID, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted segment %s\n", args[0])
				return nil
			})
		},
	}
}
