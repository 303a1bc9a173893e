package port

import "context"

// ClassifyInput carries the fields available for a category suggestion.
type ClassifyInput struct {
	DocTypeLabel  string `json:"doc_type_label,omitempty"`
	DocNumber     string `json:"doc_number,omitempty"`
	BuyerGSTIN    string `json:"buyer_gstin,omitempty"`
	PlaceOfSupply string `json:"place_of_supply,omitempty"`
	TaxableValue  string `json:"taxable_value,omitempty"`
	Rate          string `json:"rate,omitempty"`
}

// Suggestion is an advisory category assignment from the oracle.
type Suggestion struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

// ClassificationOracle is an optional advisory service. Implementations may
// fail or be absent; callers must fall back to deterministic rules with no
// behavioral difference beyond finer-grained categorization.
type ClassificationOracle interface {
	Classify(ctx context.Context, input ClassifyInput) (*Suggestion, error)
	// Insights produces human-readable observations over a run summary.
	// Purely advisory; an error means no insights.
	Insights(ctx context.Context, summary map[string]any) ([]string, error)
}
