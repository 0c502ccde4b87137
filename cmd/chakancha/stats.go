package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base and conversation statistics",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	stats, err := s.Stats()
	if err != nil {
		return err
	}

	fmt.Printf("Database: %s\n\n", cfg.Store.DatabasePath)
	fmt.Printf("  FAQ entries:    %d\n", stats["faq_vectors"])
	fmt.Printf("  Conversations:  %d\n", stats["conversations"])
	fmt.Printf("  Messages:       %d\n", stats["messages"])
	fmt.Printf("  Feedback:       %d\n", stats["feedback"])

	byCategory, err := s.VectorStats(cfg.Store.Namespace)
	if err != nil {
		return err
	}
	if len(byCategory) == 0 {
		return nil
	}

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	fmt.Printf("\nFAQs by category (namespace %q):\n", cfg.Store.Namespace)
	for _, c := range categories {
		fmt.Printf("  %-24s %d\n", c, byCategory[c])
	}
	return nil
}
