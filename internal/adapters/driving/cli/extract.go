package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var extractCmd = &cobra.Command{
	Use:   "extract [doc-id] [pages]",
	Short: "Extract pages into a new PDF",
	Long: `Builds a new PDF from selected pages of a stored document.

Pages are 1-based ranges such as "1-3,5" or "4-". Out-of-range pages are
ignored; a selection with no valid pages is an error.`,
	Args: cobra.ExactArgs(2),
	RunE: runExtract,
}

var extractOutput string

func init() {
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "output file (default: the artifact name)")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if exportService == nil {
		return fmt.Errorf("export %w", ErrServiceNotConfigured)
	}
	id, err := parseDocID(args[0])
	if err != nil {
		return err
	}

	art, err := exportService.ExtractPages(cmd.Context(), id, args[1])
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}
	return writeArtifact(cmd, art, extractOutput)
}
