package domain

// Operation is the structured action extracted from a question.
type Operation string

const (
	OpLookup Operation = "lookup"
	OpCount  Operation = "count"
	OpList   Operation = "list"
	OpExists Operation = "exists"
)

// ValidOperation reports whether op is part of the known vocabulary.
func ValidOperation(op Operation) bool {
	switch op {
	case OpLookup, OpCount, OpList, OpExists:
		return true
	}
	return false
}

// ResolvedIntent is the structured result of parsing one question. It is
// transient: produced per request and persisted only inside the turn that
// carried it.
type ResolvedIntent struct {
	Operation   Operation
	QuoteID     string
	Entity      string
	Field       string
	FilterField string
	FilterValue string
	WantsNames  bool
}

// HasFilter reports whether the intent narrows the corpus to a subset.
func (in ResolvedIntent) HasFilter() bool {
	return in.FilterField != "" || in.Entity != "" || in.QuoteID != ""
}
