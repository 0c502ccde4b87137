package faq

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// requiredFields lists the fields every FAQ must carry.
var requiredFields = []string{"id", "category", "question", "answer"}

// ValidCategories is the standard category list. Entries outside it produce a
// warning, not an error, so new categories can be introduced deliberately.
var ValidCategories = []string{
	"tea_production", "tea_processing", "market_information",
	"pricing", "quality_standards", "business_operations",
	"employment", "investment", "export", "general",
	"company", "products", "ordering", "shipping", "chakan_tree",
}

// Result carries the outcome of a validation pass.
type Result struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// Validator checks FAQ files before merge or ingestion.
type Validator struct{}

// NewValidator returns a Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateFile validates an entire FAQ file.
func (v *Validator) ValidateFile(path string) Result {
	res := Result{}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("file not readable: %v", err))
		return res
	}

	// Decode into a raw document first so missing fields are distinguishable
	// from empty ones.
	var doc struct {
		Metadata map[string]json.RawMessage   `json:"metadata"`
		FAQs     []map[string]json.RawMessage `json:"faqs"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("invalid JSON format: %v", err))
		return res
	}

	if doc.FAQs == nil {
		res.Errors = append(res.Errors, "missing 'faqs' key in JSON")
		return res
	}

	if doc.Metadata == nil {
		res.Warnings = append(res.Warnings, "no metadata found (recommended but not required)")
	} else {
		for _, field := range []string{"version", "language", "last_updated", "total_faqs"} {
			if _, ok := doc.Metadata[field]; !ok {
				res.Warnings = append(res.Warnings, fmt.Sprintf("metadata missing recommended field: %s", field))
			}
		}
	}

	seen := make(map[string]bool)
	for i, raw := range doc.FAQs {
		v.validateEntry(raw, i, seen, &res)
	}

	res.Valid = len(res.Errors) == 0
	return res
}

func (v *Validator) validateEntry(raw map[string]json.RawMessage, index int, seen map[string]bool, res *Result) {
	ref := fmt.Sprintf("FAQ #%d", index+1)

	var entry FAQ
	fields, _ := json.Marshal(raw)
	if err := json.Unmarshal(fields, &entry); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("%s: malformed entry: %v", ref, err))
		return
	}

	stringValues := map[string]string{
		"id":       entry.ID,
		"category": entry.Category,
		"question": entry.Question,
		"answer":   entry.Answer,
	}
	for _, field := range requiredFields {
		if _, present := raw[field]; !present {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: missing required field '%s'", ref, field))
		} else if strings.TrimSpace(stringValues[field]) == "" {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: field '%s' is empty", ref, field))
		}
	}

	if entry.ID != "" {
		if seen[entry.ID] {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: duplicate ID '%s'", ref, entry.ID))
		}
		seen[entry.ID] = true

		if !strings.HasPrefix(entry.ID, "faq_") {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: ID should start with 'faq_' (e.g., 'faq_001')", ref))
		}
	}

	if entry.Category != "" && !isValidCategory(entry.Category) {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"%s: category '%s' not in standard list", ref, entry.Category))
	}

	if len(entry.Question) > 500 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s: question is very long (%d chars)", ref, len(entry.Question)))
	}
	if len(entry.Answer) > 2000 {
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s: answer is very long (%d chars)", ref, len(entry.Answer)))
	}

	if rawKeywords, ok := raw["keywords"]; ok {
		var keywords []string
		if err := json.Unmarshal(rawKeywords, &keywords); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: 'keywords' must be a list of strings", ref))
		} else if len(keywords) == 0 {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%s: 'keywords' is empty", ref))
		}
	}

	if rawRelated, ok := raw["related_faqs"]; ok {
		var related []string
		if err := json.Unmarshal(rawRelated, &related); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("%s: 'related_faqs' must be a list of strings", ref))
		}
	}
}

func isValidCategory(category string) bool {
	for _, c := range ValidCategories {
		if c == category {
			return true
		}
	}
	return false
}

// CountFAQs returns the number of FAQs in a file, zero if unreadable.
func (v *Validator) CountFAQs(path string) int {
	file, err := LoadFile(path)
	if err != nil {
		return 0
	}
	return len(file.FAQs)
}

// Categories returns the sorted unique categories used in a file.
func (v *Validator) Categories(path string) []string {
	file, err := LoadFile(path)
	if err != nil {
		return nil
	}

	set := make(map[string]bool)
	for _, f := range file.FAQs {
		if f.Category != "" {
			set[f.Category] = true
		}
	}

	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
