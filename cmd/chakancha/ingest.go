package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chakancha/internal/rag"
)

var (
	ingestFile      string
	ingestNamespace string
	ingestClear     bool
	ingestForce     bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest-faq",
	Short: "Embed a FAQ file into the knowledge base",
	Long: `Validates a FAQ JSON file, embeds every entry and writes the vectors to
the knowledge base. Existing entries with the same ID are replaced; pass
--clear to wipe the namespace first so removed FAQs do not linger.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "FAQ file (default: store.faq_file from config)")
	ingestCmd.Flags().StringVar(&ingestNamespace, "namespace", "", "Target namespace (default: store.namespace)")
	ingestCmd.Flags().BoolVar(&ingestClear, "clear", false, "Clear the namespace before ingesting")
	ingestCmd.Flags().BoolVar(&ingestForce, "force", false, "Ingest even when validation reports errors")
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := ingestFile
	if path == "" {
		path = cfg.Store.FAQFile
	}
	namespace := ingestNamespace
	if namespace == "" {
		namespace = cfg.Store.Namespace
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
	result, err := ingestor.IngestFile(cmd.Context(), path, rag.IngestOptions{
		Namespace:      namespace,
		BatchSize:      cfg.Embedding.BatchSize,
		ClearFirst:     ingestClear,
		SkipValidation: ingestForce,
	})
	if result != nil && result.Validation != nil {
		printValidation(result.Validation)
	}
	if err != nil {
		return err
	}

	if result.Cleared > 0 {
		fmt.Printf("Cleared %d stale entries from namespace %q\n", result.Cleared, namespace)
	}
	fmt.Printf("Ingested %d/%d FAQs from %s", result.Ingested, result.TotalFAQs, path)
	if result.Failed > 0 {
		fmt.Printf(" (%d failed)", result.Failed)
	}
	fmt.Println()
	return nil
}
