package domain

import "sort"

// Record is a single insurance proposal, immutable after load.
type Record struct {
	QuoteID      string
	BusinessName string
	PersonName   string
	RiskLocation string
	Sections     map[string]Section
}

// Section holds the decoded field values of one named sub-structure of a
// proposal. List-valued sections (claim history) carry Items instead.
type Section struct {
	Name   string
	Fields map[string]string
	Items  []map[string]string
}

// SectionSchema declares the recognized field labels of a section and whether
// the section is list-valued. Static configuration, never mutated at runtime.
type SectionSchema struct {
	Name   string
	Title  string
	Fields []string
	List   bool
}

// TextBlock is the deterministic text rendering of one (record, section)
// pair. Its ID is the sole link between vector search hits and structured
// data: every ID returned by the index must resolve to exactly one block.
type TextBlock struct {
	ID      string
	QuoteID string
	Section string
	Text    string
}

// BlockHit is one scored vector search result.
type BlockHit struct {
	BlockID string
	Score   float64
}

// Snapshot is an immutable view of the loaded corpus. The engine swaps whole
// snapshots atomically; readers never observe a half-updated corpus.
type Snapshot struct {
	Records map[string]*Record
	Schemas map[string]SectionSchema
	Blocks  map[string]TextBlock
}

// QuoteIDs returns all record identifiers in ascending order.
func (s *Snapshot) QuoteIDs() []string {
	ids := make([]string, 0, len(s.Records))
	for id := range s.Records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// BlockID builds the canonical text block identifier for a record section.
func BlockID(quoteID, section string) string {
	return quoteID + "/" + section
}
