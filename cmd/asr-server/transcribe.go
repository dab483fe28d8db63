package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kbukum/asr-server/bootstrap"
	"github.com/kbukum/asr-server/transcribe"
)

func newTranscribeCmd(flags *rootFlags) *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe one audio file and print the JSON result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags.configPath)
			if err != nil {
				return err
			}
			if provider != "" {
				cfg.Transcription.Provider = provider
				cfg.Transcription.Fallbacks = nil
			}

			// stdout carries only the JSON result.
			if cfg.Logging.Output == "" || cfg.Logging.Output == "stdout" {
				cfg.Logging.Output = "stderr"
			}
			svc, err := newService(cfg, bootstrap.WithSummaryOutput(io.Discard))
			if err != nil {
				return err
			}
			return svc.app.RunTask(cmd.Context(), func(ctx context.Context) error {
				return transcribeFile(ctx, svc.transcriber(), args[0], cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "Engine to use (overrides transcription.provider and disables fallbacks)")
	return cmd
}

// transcribeFile runs path through the same flow as POST /transcribe and
// writes the response body to w.
func transcribeFile(ctx context.Context, svc *transcribe.Service, path string, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	result, err := svc.Transcribe(ctx, transcribe.Upload{Filename: filepath.Base(path), Body: f})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
