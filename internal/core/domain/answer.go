package domain

// Strategy tags the resolution path that produced an answer.
type Strategy string

const (
	StrategyPredefined    Strategy = "predefined"
	StrategyDeterministic Strategy = "deterministic"
	StrategyLLMAssisted   Strategy = "llm-assisted"
	StrategySemantic      Strategy = "semantic"
	StrategyRefusal       Strategy = "refusal"
)

// RefusalReason is the machine-readable category attached to every refusal,
// distinct from the rendered text so front ends can localize messaging.
type RefusalReason string

const (
	RefusalNone           RefusalReason = ""
	RefusalInputInvalid   RefusalReason = "input_invalid"
	RefusalAmbiguous      RefusalReason = "ambiguous_reference"
	RefusalBelowThreshold RefusalReason = "below_confidence_threshold"
	RefusalUpstreamError  RefusalReason = "upstream_timeout"
	RefusalNotFound       RefusalReason = "not_found"
	RefusalOutOfScope     RefusalReason = "out_of_scope"
	RefusalInconsistent   RefusalReason = "inconsistent_evidence"
)

// Answer is the final output of the resolution engine. A non-refusal answer
// always carries at least one evidence quote ID present in the snapshot.
type Answer struct {
	Text     string        `json:"text"`
	Strategy Strategy      `json:"strategy"`
	Evidence []string      `json:"evidence"`
	Reason   RefusalReason `json:"reason,omitempty"`
}

// IsRefusal reports whether the answer declines to provide business data.
func (a *Answer) IsRefusal() bool {
	return a.Strategy == StrategyRefusal
}
