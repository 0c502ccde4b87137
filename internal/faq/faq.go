// Package faq defines the FAQ document model and the tooling that keeps the
// knowledge base files healthy: structural validation and file merging.
package faq

import (
	"encoding/json"
	"fmt"
	"os"
)

// FAQ is a single knowledge base entry.
type FAQ struct {
	ID          string   `json:"id"`
	Category    string   `json:"category"`
	Question    string   `json:"question"`
	Answer      string   `json:"answer"`
	Keywords    []string `json:"keywords,omitempty"`
	RelatedFAQs []string `json:"related_faqs,omitempty"`
}

// Metadata describes a FAQ file.
type Metadata struct {
	Version     string `json:"version,omitempty"`
	Language    string `json:"language,omitempty"`
	LastUpdated string `json:"last_updated,omitempty"`
	TotalFAQs   int    `json:"total_faqs,omitempty"`
}

// File is the on-disk FAQ document format.
type File struct {
	Metadata *Metadata `json:"metadata,omitempty"`
	FAQs     []FAQ     `json:"faqs"`
}

// EmbeddingText returns the text used to embed a FAQ: question and answer
// combined so retrieval matches either phrasing.
func (f FAQ) EmbeddingText() string {
	return f.Question + "\n" + f.Answer
}

// LoadFile reads and decodes a FAQ JSON file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read FAQ file: %w", err)
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse FAQ file %s: %w", path, err)
	}
	return &file, nil
}

// SaveFile encodes and writes a FAQ document.
func SaveFile(path string, file *File) error {
	if file.Metadata != nil {
		file.Metadata.TotalFAQs = len(file.FAQs)
	}
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal FAQ file: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write FAQ file: %w", err)
	}
	return nil
}
