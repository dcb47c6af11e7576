package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"captioner/internal/audio"
	"captioner/internal/config"
	"captioner/internal/fileutil"
	"captioner/internal/language"
	"captioner/internal/media/ffprobe"
	"captioner/internal/textutil"
	"captioner/internal/timecode"
)

func newNormalizeCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string
	var base64Output bool

	cmd := &cobra.Command{
		Use:   "normalize <media-file>",
		Short: "Render a media file's audio as the 16 kHz mono WAV sent to the model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mediaPath, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			ext := ".wav"
			if base64Output {
				ext = ".wav.b64"
			}
			output := strings.TrimSpace(outputFlag)
			if output == "" {
				output = textutil.SiblingPath(mediaPath, ext)
			}
			if output, err = config.ExpandPath(output); err != nil {
				return err
			}

			normalizer, err := ctx.newNormalizer()
			if err != nil {
				return err
			}
			pcm, err := normalizer.Render(cmd.Context(), mediaPath)
			if err != nil {
				return err
			}
			if base64Output {
				encoded := audio.EncodeTransport(audio.EncodeWAV(pcm), cfg.Audio.TransportChunkBytes)
				err = fileutil.WriteFileAtomic(output, []byte(encoded), 0o644)
			} else {
				err = audio.WriteWAVFile(output, pcm)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d samples, %s)\n",
				output, len(pcm), timecode.FormatClock(pcm.DurationSeconds()))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Destination file (default next to the media file)")
	cmd.Flags().BoolVar(&base64Output, "base64", false, "Write the base64 transport text instead of raw WAV")
	return cmd
}

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "probe <media-file>",
		Short: "Show the audio streams ffprobe reports for a media file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mediaPath, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			result, err := ffprobe.Inspect(cmd.Context(), cfg.FFprobeBinary(), mediaPath)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Duration: %s\n", timecode.FormatClock(result.DurationSeconds()))
			streams := result.AudioStreams()
			if len(streams) == 0 {
				fmt.Fprintln(out, "No audio streams")
				return nil
			}
			primary, _ := result.PrimaryAudio()
			fmt.Fprintln(out, renderStreamTable(streams, primary.Index))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the raw ffprobe result as JSON")
	return cmd
}

func renderStreamTable(streams []ffprobe.Stream, primary int) string {
	rows := make([][]string, 0, len(streams))
	for _, s := range streams {
		lang := "-"
		if code := s.Language(); code != "" {
			lang = language.DisplayName(code)
		}
		marker := ""
		if s.Index == primary {
			marker = "*"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d%s", s.Index, marker),
			valueOrDash(s.CodecName),
			fmt.Sprintf("%d", s.Channels),
			fmt.Sprintf("%d", s.SampleRateHz()),
			lang,
		})
	}
	return renderTable(
		[]string{"Stream", "Codec", "Channels", "Rate", "Language"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignLeft},
	)
}
