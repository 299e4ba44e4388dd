package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"

	"go-plate-inspector/internal/container"
	"go-plate-inspector/internal/service"
	"go-plate-inspector/pkg/models"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Detect and read the number plate in an image file",
	Long: `Run detection, OCR and allow-list matching on a single image file.

The cascade and OCR models must be available: build with -tags gocv and cgo
enabled, with OpenCV and Tesseract installed.`,
	Example: `  # Read a plate and print the result
  platectl detect --image car.jpg

  # Print JSON and keep the annotated frame
  platectl detect --image car.jpg --json --annotated out.jpg`,
	Args: cobra.NoArgs,
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().StringP("image", "i", "", "Image file to read [REQUIRED]")
	detectCmd.Flags().Bool("json", false, "Output as JSON")
	detectCmd.Flags().String("annotated", "", "Write the annotated frame to this file")
	detectCmd.Flags().String("patch", "", "Write the binarized plate patch to this file")
	detectCmd.Flags().Duration("timeout", 60*time.Second, "Processing timeout")
	_ = detectCmd.MarkFlagRequired("image")
}

func runDetect(cmd *cobra.Command, args []string) error {
	imagePath, _ := cmd.Flags().GetString("image")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	annotatedPath, _ := cmd.Flags().GetString("annotated")
	patchPath, _ := cmd.Flags().GetString("patch")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	img, err := imaging.Open(imagePath, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", imagePath, err)
	}

	core, err := container.NewCore(cfg)
	if err != nil {
		return err
	}
	defer core.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	result, err := core.Pipeline.Run(ctx, service.SourceFile, img)
	if err != nil {
		return err
	}

	if annotatedPath != "" {
		if err := imaging.Save(result.Annotated, annotatedPath); err != nil {
			return fmt.Errorf("failed to write annotated frame: %w", err)
		}
	}
	if patchPath != "" && result.Processed != nil {
		if err := imaging.Save(result.Processed, patchPath); err != nil {
			return fmt.Errorf("failed to write plate patch: %w", err)
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	printResult(cmd.OutOrStdout(), result)
	return nil
}

func printResult(w io.Writer, result *models.PlateResult) {
	fmt.Fprintf(w, "Extracted text: %s\n", result.Text)
	fmt.Fprintf(w, "Status:         %s\n", result.Status.Label())
	if result.Region != nil {
		r := result.Region
		fmt.Fprintf(w, "Region:         x=%d y=%d w=%d h=%d (%d candidates)\n",
			r.X, r.Y, r.Width, r.Height, result.Candidates)
	}
	if result.Nearest != nil {
		fmt.Fprintf(w, "Closest entry:  %s (distance %d)\n", result.Nearest.Entry, result.Nearest.Distance)
	}
	fmt.Fprintf(w, "Time:           %.3fs\n", result.ProcessingTimeSec)
}
