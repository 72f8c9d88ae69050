package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/archivist/internal/core/domain"
	"github.com/custodia-labs/archivist/internal/core/ports/driving"
)

var redactCmd = &cobra.Command{
	Use:   "redact [file | doc-id]",
	Short: "Produce a redacted copy",
	Long: `Paints out rectangles on a file or a stored document and writes the
result as a new file. The source is never modified.

Rectangles are read from --rects as JSON, either {"rects":[...]} or a bare
array of {"page","x","y","width","height"}. When they were drawn on a
scaled preview, pass its size with --canvas-width and --canvas-height.

Examples:
  archivist redact scan.pdf --rects boxes.json -o scan-redacted.pdf
  archivist redact --doc 42 --rects boxes.json --canvas-width 800 --canvas-height 1131`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRedact,
}

var (
	redactRects        string
	redactKind         string
	redactDoc          bool
	redactCanvasWidth  float64
	redactCanvasHeight float64
	redactOutput       string
)

func init() {
	redactCmd.Flags().StringVar(&redactRects, "rects", "", "JSON file with rectangles (- for stdin)")
	redactCmd.Flags().StringVar(&redactKind, "kind", "", "artifact kind: paged or raster (default: from file)")
	redactCmd.Flags().BoolVar(&redactDoc, "doc", false, "treat the argument as a document ID")
	redactCmd.Flags().Float64Var(&redactCanvasWidth, "canvas-width", 0, "width of the preview the rectangles were drawn on")
	redactCmd.Flags().Float64Var(&redactCanvasHeight, "canvas-height", 0, "height of the preview the rectangles were drawn on")
	redactCmd.Flags().StringVarP(&redactOutput, "output", "o", "", "output file (default: the artifact name)")
	_ = redactCmd.MarkFlagRequired("rects") //nolint:errcheck // flag exists
	rootCmd.AddCommand(redactCmd)
}

func runRedact(cmd *cobra.Command, args []string) error {
	if redactionService == nil {
		return fmt.Errorf("redaction %w", ErrServiceNotConfigured)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: a file or document ID is required", domain.ErrInvalidInput)
	}

	rects, err := readRects(cmd, redactRects)
	if err != nil {
		return err
	}
	req := domain.RedactionRequest{
		Rects:  rects,
		Canvas: domain.CanvasSize{Width: redactCanvasWidth, Height: redactCanvasHeight},
	}

	var art *driving.Artifact
	if redactDoc {
		id, err := parseDocID(args[0])
		if err != nil {
			return err
		}
		req.Kind = domain.ArtifactPaged
		art, err = redactionService.RedactDocument(cmd.Context(), id, req)
		if err != nil {
			return fmt.Errorf("redaction failed: %w", err)
		}
	} else {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		req.Kind, err = kindFor(redactKind, data)
		if err != nil {
			return err
		}
		art, err = redactionService.Redact(cmd.Context(), data, filepath.Base(args[0]), req)
		if err != nil {
			return fmt.Errorf("redaction failed: %w", err)
		}
	}

	return writeArtifact(cmd, art, redactOutput)
}

func readRects(cmd *cobra.Command, path string) ([]domain.Rect, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read rectangles: %w", err)
	}
	return domain.ParseRects(data)
}

// kindFor resolves the artifact kind from the flag, or sniffs it from data.
func kindFor(flag string, data []byte) (domain.ArtifactKind, error) {
	if strings.TrimSpace(flag) != "" {
		return domain.ParseArtifactKind(flag)
	}
	if strings.HasPrefix(string(data[:min(len(data), 5)]), "%PDF") {
		return domain.ArtifactPaged, nil
	}
	return domain.ArtifactRaster, nil
}

// writeArtifact saves art to output, or to its own name in the working directory.
func writeArtifact(cmd *cobra.Command, art *driving.Artifact, output string) error {
	if output == "" {
		output = art.Name
	}
	if err := os.WriteFile(output, art.Data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	cmd.Printf("Wrote %s (%d bytes)\n", output, len(art.Data))
	return nil
}
