package faq

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"chakancha/internal/logging"
)

// MergeResult summarizes a merge operation.
type MergeResult struct {
	BaseFAQs          int
	NewFAQs           int
	Added             int
	Updated           int
	DuplicatesSkipped int
	TotalFAQs         int
	BackupPath        string
	OutputPath        string
}

// Merger merges a new FAQ file into a base file. New entries are appended;
// entries whose ID exists in the base replace the base entry when the content
// differs and are skipped when identical.
type Merger struct {
	validator *Validator
}

// NewMerger returns a Merger.
func NewMerger() *Merger {
	return &Merger{validator: NewValidator()}
}

// MergeOptions controls a merge.
type MergeOptions struct {
	BaseFile     string
	NewFile      string
	OutputFile   string // defaults to BaseFile
	CreateBackup bool
}

// Merge merges NewFile into BaseFile and writes the result.
func (m *Merger) Merge(opts MergeOptions) (*MergeResult, error) {
	if opts.OutputFile == "" {
		opts.OutputFile = opts.BaseFile
	}

	base, err := LoadFile(opts.BaseFile)
	if err != nil {
		return nil, fmt.Errorf("base file: %w", err)
	}
	incoming, err := LoadFile(opts.NewFile)
	if err != nil {
		return nil, fmt.Errorf("new file: %w", err)
	}

	result := &MergeResult{
		BaseFAQs:   len(base.FAQs),
		NewFAQs:    len(incoming.FAQs),
		OutputPath: opts.OutputFile,
	}

	if opts.CreateBackup {
		backupPath, err := m.backup(opts.BaseFile)
		if err != nil {
			return nil, fmt.Errorf("backup failed: %w", err)
		}
		result.BackupPath = backupPath
	}

	index := make(map[string]int, len(base.FAQs))
	for i, f := range base.FAQs {
		index[f.ID] = i
	}

	for _, f := range incoming.FAQs {
		pos, exists := index[f.ID]
		switch {
		case !exists:
			base.FAQs = append(base.FAQs, f)
			index[f.ID] = len(base.FAQs) - 1
			result.Added++
		case sameFAQ(base.FAQs[pos], f):
			result.DuplicatesSkipped++
		default:
			base.FAQs[pos] = f
			result.Updated++
		}
	}

	result.TotalFAQs = len(base.FAQs)

	if base.Metadata == nil {
		base.Metadata = &Metadata{}
	}
	base.Metadata.LastUpdated = time.Now().Format("2006-01-02")

	if err := SaveFile(opts.OutputFile, base); err != nil {
		return nil, err
	}

	logging.RAG("Merged %s into %s: %d added, %d updated, %d skipped",
		opts.NewFile, opts.OutputFile, result.Added, result.Updated, result.DuplicatesSkipped)

	return result, nil
}

// ValidateMergeResult re-validates the merged output file.
func (m *Merger) ValidateMergeResult(path string) bool {
	return m.validator.ValidateFile(path).Valid
}

// backup copies the base file next to itself with a timestamp suffix.
func (m *Merger) backup(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	backupPath := fmt.Sprintf("%s_backup_%s%s", stem, time.Now().Format("20060102_150405"), ext)

	if err := os.WriteFile(backupPath, data, 0644); err != nil {
		return "", err
	}
	return backupPath, nil
}

func sameFAQ(a, b FAQ) bool {
	if a.ID != b.ID || a.Category != b.Category || a.Question != b.Question || a.Answer != b.Answer {
		return false
	}
	if len(a.Keywords) != len(b.Keywords) || len(a.RelatedFAQs) != len(b.RelatedFAQs) {
		return false
	}
	for i := range a.Keywords {
		if a.Keywords[i] != b.Keywords[i] {
			return false
		}
	}
	for i := range a.RelatedFAQs {
		if a.RelatedFAQs[i] != b.RelatedFAQs[i] {
			return false
		}
	}
	return true
}
