package main

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kolekta/extract-cli/internal/extract"
)

var (
	extractSchema string
	extractText   string
	extractFile   string
	extractModel  string
	extractFormID string
	extractRows   bool
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract form fields from free text",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("extract"); err != nil {
			return err
		}

		text := extractText
		if extractFile != "" {
			data, err := os.ReadFile(extractFile)
			if err != nil {
				return eris.Wrapf(err, "read input %s", extractFile)
			}
			text = string(data)
		}
		if strings.TrimSpace(text) == "" {
			return eris.New("no input text: pass --text or --file")
		}

		s, err := loadSchema(extractSchema)
		if err != nil {
			return err
		}

		registry, err := buildRegistry()
		if err != nil {
			return err
		}
		orch := buildOrchestrator(registry)

		opts := extract.Options{
			FormID:     extractFormID,
			Schema:     s,
			Text:       text,
			Preference: extractModel,
		}

		if extractRows {
			result, err := orch.ExtractRows(ctx, opts)
			if err != nil {
				return eris.Wrap(err, "extract rows")
			}
			zap.L().Info("extraction complete",
				zap.String("request_id", result.RequestID),
				zap.Int("rows", result.TotalRows),
			)
			return printJSON(result)
		}

		result, err := orch.Extract(ctx, opts)
		if err != nil {
			return eris.Wrap(err, "extract")
		}
		zap.L().Info("extraction complete",
			zap.String("request_id", result.RequestID),
			zap.Int("fields", len(result.Fields)),
			zap.Strings("missing_required", result.MissingRequired),
		)
		return printJSON(result)
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractSchema, "schema", "", "path to form schema JSON (required)")
	extractCmd.Flags().StringVar(&extractText, "text", "", "input text")
	extractCmd.Flags().StringVar(&extractFile, "file", "", "path to input text file")
	extractCmd.Flags().StringVar(&extractModel, "model", "", "model preference (alias, provider name, or model id)")
	extractCmd.Flags().StringVar(&extractFormID, "form-id", "", "form identifier echoed in the result")
	extractCmd.Flags().BoolVar(&extractRows, "rows", false, "extract multiple rows from tabular input")
	_ = extractCmd.MarkFlagRequired("schema")
	rootCmd.AddCommand(extractCmd)
}
