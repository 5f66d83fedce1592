package excel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/SohamB4746Y/ja-assure-rag/internal/core/domain"
)

// BuildSectionText renders one record section deterministically: same
// section data, same text, byte for byte. Field lines are emitted in sorted
// field order so the rendering is stable across runs.
func BuildSectionText(quoteID string, section domain.Section) string {
	lines := []string{fmt.Sprintf("Proposal %s – %s:", quoteID, sectionTitle(section.Name))}

	if section.Name == "claim_history" {
		return buildClaimHistoryText(lines, section)
	}

	for _, field := range sortedFields(section.Fields) {
		lines = append(lines, fmt.Sprintf("%s: %s", FieldTitle(field), section.Fields[field]))
	}

	for i, item := range section.Items {
		lines = append(lines, fmt.Sprintf("Item %d:", i+1))
		for _, field := range sortedFields(item) {
			lines = append(lines, fmt.Sprintf("- %s: %s", FieldTitle(field), item[field]))
		}
	}

	if len(lines) == 1 {
		return ""
	}
	return strings.Join(lines, "\n")
}

// Claim history mixes a status field with a nested list of claims.
func buildClaimHistoryText(lines []string, section domain.Section) string {
	if status, ok := section.Fields["claim_history_label"]; ok {
		lines = append(lines, "Claim Status: "+status)
	}

	claimNo := 0
	for _, item := range section.Items {
		year, hasYear := item["year_of_claim_label"]
		if !hasYear {
			continue
		}
		claimNo++
		lines = append(lines, fmt.Sprintf("Claim %d:", claimNo))
		lines = append(lines, "- Year: "+year)
		if amount, ok := item["amount_of_claim_label"]; ok {
			lines = append(lines, "- Amount: "+amount)
		}
		if desc, ok := item["description_label"]; ok {
			lines = append(lines, "- Description: "+desc)
		}
	}

	if len(lines) == 1 {
		return ""
	}
	return strings.Join(lines, "\n")
}

// FieldTitle converts a stored field name to its display label.
func FieldTitle(field string) string {
	label := strings.TrimSuffix(strings.ToLower(field), "_label")
	words := strings.Split(label, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func sortedFields(fields map[string]string) []string {
	out := make([]string, 0, len(fields))
	for field := range fields {
		out = append(out, field)
	}
	sort.Strings(out)
	return out
}
