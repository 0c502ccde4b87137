package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chakancha/internal/faq"
	"chakancha/internal/rag"
)

var (
	mergeBaseFile     string
	mergeNewFile      string
	mergeOutputFile   string
	mergeNoBackup     bool
	mergeValidateOnly bool
	mergeAutoIngest   bool
)

var mergeCmd = &cobra.Command{
	Use:   "merge-faqs",
	Short: "Merge new FAQ entries into the base FAQ file",
	Long: `Validates a file of new FAQ entries and merges them into the base file.
Entries with a known ID update the existing FAQ, unchanged duplicates are
skipped, and new IDs are appended. A timestamped backup of the base file is
written unless --no-backup is given.

With --auto-ingest the merged file is embedded into the knowledge base
immediately after a successful merge.`,
	RunE: runMerge,
}

func init() {
	mergeCmd.Flags().StringVar(&mergeNewFile, "new-file", "", "File with new FAQ entries (required)")
	mergeCmd.Flags().StringVar(&mergeBaseFile, "base-file", "", "Base FAQ file (default: store.faq_file)")
	mergeCmd.Flags().StringVar(&mergeOutputFile, "output-file", "", "Output path (default: overwrite base file)")
	mergeCmd.Flags().BoolVar(&mergeNoBackup, "no-backup", false, "Skip the timestamped backup")
	mergeCmd.Flags().BoolVar(&mergeValidateOnly, "validate-only", false, "Validate the new file and exit")
	mergeCmd.Flags().BoolVar(&mergeAutoIngest, "auto-ingest", false, "Re-ingest the merged file afterwards")
	mergeCmd.MarkFlagRequired("new-file")
}

func runMerge(cmd *cobra.Command, args []string) error {
	baseFile := mergeBaseFile
	if baseFile == "" {
		baseFile = cfg.Store.FAQFile
	}

	validation := faq.NewValidator().ValidateFile(mergeNewFile)
	printValidation(&validation)
	if !validation.Valid {
		return fmt.Errorf("%s failed validation", mergeNewFile)
	}
	if mergeValidateOnly {
		fmt.Println("Validation passed.")
		return nil
	}

	merger := faq.NewMerger()
	result, err := merger.Merge(faq.MergeOptions{
		BaseFile:     baseFile,
		NewFile:      mergeNewFile,
		OutputFile:   mergeOutputFile,
		CreateBackup: !mergeNoBackup,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Merged %s into %s:\n", mergeNewFile, result.OutputPath)
	fmt.Printf("  added:      %d\n", result.Added)
	fmt.Printf("  updated:    %d\n", result.Updated)
	fmt.Printf("  duplicates: %d\n", result.DuplicatesSkipped)
	fmt.Printf("  total:      %d\n", result.TotalFAQs)
	if result.BackupPath != "" {
		fmt.Printf("  backup:     %s\n", result.BackupPath)
	}

	if !mergeAutoIngest {
		return nil
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	engine, err := buildEmbeddingEngine()
	if err != nil {
		return err
	}

	ingestor := rag.NewIngestor(s, engine)
	ingest, err := ingestor.IngestFile(cmd.Context(), result.OutputPath, rag.IngestOptions{
		Namespace:  cfg.Store.Namespace,
		BatchSize:  cfg.Embedding.BatchSize,
		ClearFirst: true,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Re-ingested %d FAQs into namespace %q\n", ingest.Ingested, cfg.Store.Namespace)
	return nil
}

func printValidation(result *faq.Result) {
	for _, e := range result.Errors {
		fmt.Printf("error: %s\n", e)
	}
	for _, w := range result.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
}
