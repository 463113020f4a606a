package main

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kolekta/extract-cli/internal/extract"
	"github.com/kolekta/extract-cli/internal/transcribe"
)

var (
	audioSchema   string
	audioPath     string
	audioLanguage string
	audioModel    string
	audioFormID   string
)

var audioCmd = &cobra.Command{
	Use:   "audio",
	Short: "Transcribe a voice recording and extract form fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("audio"); err != nil {
			return err
		}

		data, err := os.ReadFile(audioPath)
		if err != nil {
			return eris.Wrapf(err, "read audio %s", audioPath)
		}

		s, err := loadSchema(audioSchema)
		if err != nil {
			return err
		}

		// Spitch handles its supported languages; everything else goes to
		// Whisper.
		var tr transcribe.Transcriber
		useSpitch := cfg.Spitch.Key != "" && transcribe.SupportsLanguage(audioLanguage)
		if useSpitch {
			tr = transcribe.NewSpitch(cfg.Spitch.Key, cfg.Spitch.BaseURL)
		} else {
			if cfg.OpenAI.Key == "" {
				return eris.Errorf("language %q needs Whisper but openai.key is unset", audioLanguage)
			}
			tr = transcribe.NewWhisper(cfg.OpenAI.Key, cfg.OpenAI.BaseURL, cfg.OpenAI.WhisperModel)
		}

		res, err := tr.Transcribe(ctx, data, filepath.Base(audioPath), audioLanguage)
		if err != nil {
			return eris.Wrap(err, "transcribe")
		}
		zap.L().Info("transcription complete",
			zap.String("backend", tr.Name()),
			zap.String("language", res.Language),
			zap.Int("chars", len(res.Text)),
			zap.Int64("elapsed_ms", res.Millis),
		)

		text := res.Text
		if useSpitch && audioLanguage != "en" {
			translated, err := tr.(*transcribe.Spitch).Translate(ctx, text, audioLanguage)
			if err != nil {
				zap.L().Warn("translation failed, extracting from original transcript", zap.Error(err))
			} else {
				text = translated
			}
		}

		registry, err := buildRegistry()
		if err != nil {
			return err
		}
		orch := buildOrchestrator(registry)

		result, err := orch.Extract(ctx, extract.Options{
			FormID:     audioFormID,
			Schema:     s,
			Text:       text,
			Preference: audioModel,
			ASRMillis:  res.Millis,
		})
		if err != nil {
			return eris.Wrap(err, "extract")
		}
		return printJSON(result)
	},
}

func init() {
	audioCmd.Flags().StringVar(&audioSchema, "schema", "", "path to form schema JSON (required)")
	audioCmd.Flags().StringVar(&audioPath, "audio", "", "path to audio file (required)")
	audioCmd.Flags().StringVar(&audioLanguage, "language", "en", "ISO-639-1 language code of the recording")
	audioCmd.Flags().StringVar(&audioModel, "model", "", "model preference (alias, provider name, or model id)")
	audioCmd.Flags().StringVar(&audioFormID, "form-id", "", "form identifier echoed in the result")
	_ = audioCmd.MarkFlagRequired("schema")
	_ = audioCmd.MarkFlagRequired("audio")
	rootCmd.AddCommand(audioCmd)
}
