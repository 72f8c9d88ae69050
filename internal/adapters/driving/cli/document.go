package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/archivist/internal/core/domain"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage archived documents",
	Long:  `List, view, annotate, re-extract or delete archived documents.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the newest documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentTextCmd = &cobra.Command{
	Use:   "text [doc-id]",
	Short: "Print extracted text",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentText,
}

var documentContentCmd = &cobra.Command{
	Use:   "content [doc-id]",
	Short: "Write the canonical PDF",
	Long:  `Writes the canonical PDF to --output, or to stdout when no file is given.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentContent,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document",
	Long:  `Removes the document, its index entry, annotations and stored file.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var documentReingestCmd = &cobra.Command{
	Use:   "reingest [doc-id]",
	Short: "Re-run OCR and translation",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentReingest,
}

var documentTagCmd = &cobra.Command{
	Use:   "tag [doc-id] [tag...]",
	Short: "Show, add or remove tags",
	Long: `With only a document ID, lists its tags. Otherwise adds each tag,
or removes them with --remove.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDocumentTag,
}

var documentNoteCmd = &cobra.Command{
	Use:   "note [doc-id] [text]",
	Short: "Show or add notes",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runDocumentNote,
}

var (
	documentListLimit  int
	documentTranslated bool
	documentOutput     string
	documentTagRemove  bool
	documentNoteAuthor string
)

func init() {
	documentListCmd.Flags().IntVarP(&documentListLimit, "limit", "n", 50, "maximum number of documents")
	documentTextCmd.Flags().BoolVarP(&documentTranslated, "translated", "t", false, "print the translation instead of the original text")
	documentContentCmd.Flags().StringVarP(&documentOutput, "output", "o", "", "file to write the PDF to")
	documentTagCmd.Flags().BoolVar(&documentTagRemove, "remove", false, "remove the given tags")
	documentNoteCmd.Flags().StringVar(&documentNoteAuthor, "author", "", "note author (defaults to $USER)")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentTextCmd)
	documentCmd.AddCommand(documentContentCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	documentCmd.AddCommand(documentReingestCmd)
	documentCmd.AddCommand(documentTagCmd)
	documentCmd.AddCommand(documentNoteCmd)
	rootCmd.AddCommand(documentCmd)
}

// parseDocID parses a positive document ID argument.
func parseDocID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid document id %q", domain.ErrInvalidInput, s)
	}
	return id, nil
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return fmt.Errorf("document %w", ErrServiceNotConfigured)
	}

	docs, err := documentService.List(cmd.Context(), documentListLimit)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	for i := range docs {
		cmd.Printf("  %-6d %-8s %3dp  %s\n", docs[i].ID, docs[i].Lang, docs[i].PageCount, docs[i].Filename)
	}
	cmd.Printf("\nTotal: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return fmt.Errorf("document %w", ErrServiceNotConfigured)
	}
	id, err := parseDocID(args[0])
	if err != nil {
		return err
	}

	doc, err := documentService.Get(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %d\n\n", doc.ID)
	cmd.Printf("  Filename: %s\n", doc.Filename)
	if doc.OriginalName != "" && doc.OriginalName != doc.Filename {
		cmd.Printf("  Uploaded: %s\n", doc.OriginalName)
	}
	cmd.Printf("  Language: %s\n", doc.Lang)
	cmd.Printf("  Pages:    %d\n", doc.PageCount)
	cmd.Printf("  Size:     %d bytes\n", doc.Size)
	cmd.Printf("  Hash:     %s\n", doc.ContentHash)
	cmd.Printf("  Created:  %s\n", doc.CreatedAt.Format("2006-01-02 15:04:05"))
	cmd.Printf("  Updated:  %s\n", doc.UpdatedAt.Format("2006-01-02 15:04:05"))

	tags, err := documentService.Tags(cmd.Context(), id)
	if err == nil && len(tags) > 0 {
		names := make([]string, len(tags))
		for i := range tags {
			names[i] = tags[i].Name
		}
		cmd.Printf("  Tags:     %s\n", strings.Join(names, ", "))
	}
	return nil
}

func runDocumentText(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return fmt.Errorf("document %w", ErrServiceNotConfigured)
	}
	id, err := parseDocID(args[0])
	if err != nil {
		return err
	}

	doc, err := documentService.Get(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	if documentTranslated {
		cmd.Println(doc.Translated)
	} else {
		cmd.Println(doc.Text)
	}
	return nil
}

func runDocumentContent(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return fmt.Errorf("document %w", ErrServiceNotConfigured)
	}
	id, err := parseDocID(args[0])
	if err != nil {
		return err
	}

	data, err := documentService.Content(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to read document content: %w", err)
	}

	if documentOutput == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(documentOutput, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", documentOutput, err)
	}
	cmd.Printf("Wrote %d bytes to %s\n", len(data), documentOutput)
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return fmt.Errorf("document %w", ErrServiceNotConfigured)
	}
	id, err := parseDocID(args[0])
	if err != nil {
		return err
	}

	if err := documentService.Delete(cmd.Context(), id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Document %d deleted.\n", id)
	return nil
}

func runDocumentReingest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return fmt.Errorf("ingest %w", ErrServiceNotConfigured)
	}
	id, err := parseDocID(args[0])
	if err != nil {
		return err
	}

	cmd.Printf("Re-extracting document %d...\n", id)

	doc, err := ingestService.Reingest(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to reingest document: %w", err)
	}

	cmd.Printf("Document %d refreshed (language: %s).\n", doc.ID, doc.Lang)
	return nil
}

func runDocumentTag(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return fmt.Errorf("document %w", ErrServiceNotConfigured)
	}
	id, err := parseDocID(args[0])
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	for _, tag := range args[1:] {
		if documentTagRemove {
			err = documentService.RemoveTag(ctx, id, tag)
		} else {
			err = documentService.AddTag(ctx, id, tag)
		}
		if err != nil {
			return fmt.Errorf("failed to update tag %q: %w", tag, err)
		}
	}

	tags, err := documentService.Tags(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list tags: %w", err)
	}
	if len(tags) == 0 {
		cmd.Printf("Document %d has no tags.\n", id)
		return nil
	}
	for i := range tags {
		cmd.Printf("  %s\n", tags[i].Name)
	}
	return nil
}

func runDocumentNote(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return fmt.Errorf("document %w", ErrServiceNotConfigured)
	}
	id, err := parseDocID(args[0])
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if len(args) == 2 {
		author := documentNoteAuthor
		if author == "" {
			author = os.Getenv("USER")
		}
		note, err := documentService.AddNote(ctx, id, author, args[1])
		if err != nil {
			return fmt.Errorf("failed to add note: %w", err)
		}
		cmd.Printf("Added note %d.\n", note.ID)
		return nil
	}

	notes, err := documentService.Notes(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list notes: %w", err)
	}
	if len(notes) == 0 {
		cmd.Printf("Document %d has no notes.\n", id)
		return nil
	}
	for i := range notes {
		cmd.Printf("  [%d] %s (%s)\n", notes[i].ID, notes[i].Author, notes[i].CreatedAt.Format("2006-01-02 15:04"))
		cmd.Printf("      %s\n", notes[i].Body)
	}
	return nil
}
