package main

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kolekta/extract-cli/internal/extract"
	"github.com/kolekta/extract-cli/internal/provider"
	"github.com/kolekta/extract-cli/internal/vision"
)

var (
	imageSchema string
	imageModel  string
	imageFormID string
	imageOCR    bool
	imageRows   bool
)

var imageCmd = &cobra.Command{
	Use:   "image [files...]",
	Short: "Extract form fields from document photos",
	Long:  "Sends document images to a vision-capable provider. By default images travel inline with the extraction prompt; --ocr runs a separate recognition pass first and feeds the recognized text and blocks into extraction.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("image"); err != nil {
			return err
		}
		if len(args) > cfg.Extract.MaxImages {
			return eris.Errorf("too many images: %d exceeds limit %d", len(args), cfg.Extract.MaxImages)
		}

		s, err := loadSchema(imageSchema)
		if err != nil {
			return err
		}

		registry, err := buildRegistry()
		if err != nil {
			return err
		}
		orch := buildOrchestrator(registry)

		opts := extract.Options{
			FormID:      imageFormID,
			Schema:      s,
			Preference:  imageModel,
			NeedsVision: true,
		}

		if imageOCR {
			vis := registry.FirstVision()
			if vis == nil {
				return eris.New("no vision-capable provider configured")
			}
			proc, ok := vis.(provider.ImageProcessor)
			if !ok {
				return eris.Errorf("provider %s cannot run standalone recognition", vis.Name())
			}

			images := make([][]byte, 0, len(args))
			names := make([]string, 0, len(args))
			for _, p := range args {
				data, err := os.ReadFile(p)
				if err != nil {
					return eris.Wrapf(err, "read image %s", p)
				}
				images = append(images, data)
				names = append(names, filepath.Base(p))
			}

			rec, err := vision.NewRecognizer(proc, cfg.Extract.MaxImages).Recognize(ctx, images, names)
			if err != nil {
				return eris.Wrap(err, "recognize")
			}
			zap.L().Info("recognition complete",
				zap.Int("pages", len(rec.Pages)),
				zap.Int64("elapsed_ms", rec.Millis),
			)

			opts.Text = rec.Text
			opts.OCRBlocks = rec.Blocks
			opts.VisionMillis = rec.Millis
			opts.NeedsVision = false
		} else {
			urls, err := vision.LoadDataURLs(args)
			if err != nil {
				return err
			}
			opts.Images = urls
		}

		if imageRows {
			result, err := orch.ExtractRows(ctx, opts)
			if err != nil {
				return eris.Wrap(err, "extract rows")
			}
			return printJSON(result)
		}

		result, err := orch.Extract(ctx, opts)
		if err != nil {
			return eris.Wrap(err, "extract")
		}
		return printJSON(result)
	},
}

func init() {
	imageCmd.Flags().StringVar(&imageSchema, "schema", "", "path to form schema JSON (required)")
	imageCmd.Flags().StringVar(&imageModel, "model", "", "model preference (alias, provider name, or model id)")
	imageCmd.Flags().StringVar(&imageFormID, "form-id", "", "form identifier echoed in the result")
	imageCmd.Flags().BoolVar(&imageOCR, "ocr", false, "run a separate recognition pass before extraction")
	imageCmd.Flags().BoolVar(&imageRows, "rows", false, "extract multiple rows from tabular documents")
	_ = imageCmd.MarkFlagRequired("schema")
	rootCmd.AddCommand(imageCmd)
}
