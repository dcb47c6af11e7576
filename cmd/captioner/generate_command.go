package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"captioner/internal/config"
	"captioner/internal/language"
	"captioner/internal/services/llm"
	"captioner/internal/session"
	"captioner/internal/subtitles"
	"captioner/internal/timecode"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var modeFlag string
	var languageFlag string
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "generate <media-file>",
		Short: "Transcribe or translate a media file's audio into the current session",
		Long: "Decode the audio track, send it to the configured model in a single request, " +
			"and replace the session's segments with the result. On any failure the " +
			"previous segments are kept.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mediaPath, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			var mode llm.Mode
			if strings.TrimSpace(modeFlag) != "" {
				if mode, err = llm.ParseMode(modeFlag); err != nil {
					return err
				}
			}
			lang := ""
			if strings.TrimSpace(languageFlag) != "" {
				if lang, err = language.Normalize(languageFlag); err != nil {
					return err
				}
			}
			output := strings.TrimSpace(outputFlag)
			if output != "" {
				if output, err = config.ExpandPath(output); err != nil {
					return err
				}
			}

			return ctx.withStore(func(store *session.Store) error {
				svc, err := ctx.newService(store)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Generating captions for %s...\n", mediaPath)
				result, err := svc.Generate(cmd.Context(), subtitles.GenerateRequest{
					Session:    ctx.sessionName(),
					MediaPath:  mediaPath,
					Mode:       mode,
					Language:   lang,
					OutputPath: output,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Stored %d segments in session %q (%s of audio, %s)\n",
					len(result.Segments), result.Session.Name,
					timecode.FormatClock(result.AudioSeconds), result.Elapsed.Round(100*time.Millisecond))
				if result.SubtitlePath != "" {
					fmt.Fprintf(out, "Wrote %s\n", result.SubtitlePath)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "translate or caption (default from captions.mode)")
	cmd.Flags().StringVarP(&languageFlag, "language", "l", "", "Target language for translate mode, e.g. es or spanish")
	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Also write the result to this SRT file")
	return cmd
}
