package evaluation

import "time"

// Strategy names the extractor stage a golden query is meant to exercise.
type Strategy string

const (
	StrategyQuestion    Strategy = "question"     // e.g., "what is Fabry disease?"
	StrategyMedicalTerm Strategy = "medical_term" // e.g., "síndrome de Marfan"
	StrategyCapitalized Strategy = "capitalized"  // e.g., "my son has Pompe"
	StrategyBareTerm    Strategy = "bare_term"    // e.g., "gaucher"
	StrategyNone        Strategy = "none"         // greetings and chit-chat
)

// ValidStrategies returns all valid strategy values.
func ValidStrategies() []Strategy {
	return []Strategy{StrategyQuestion, StrategyMedicalTerm, StrategyCapitalized, StrategyBareTerm, StrategyNone}
}

// IsValid checks if the strategy value is one of the defined constants.
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyQuestion, StrategyMedicalTerm, StrategyCapitalized, StrategyBareTerm, StrategyNone:
		return true
	}
	return false
}

// GoldenQuery is a labeled chat message with the name the extractor should
// find and the ORPHA codes the index should rank for it.
type GoldenQuery struct {
	ID            string   `json:"id"`
	Query         string   `json:"query"`
	Strategy      Strategy `json:"strategy"`
	ExpectedName  string   `json:"expected_name"`
	ExpectedCodes []string `json:"expected_codes"`
	Difficulty    string   `json:"difficulty"` // easy, medium, hard
}

// EvalResult holds the evaluation outcome for a single query.
type EvalResult struct {
	QueryID        string
	Query          string
	Strategy       Strategy
	ExtractedName  string
	NameMatched    bool
	RecallAt10     float64
	MRRAt10        float64
	ResultCount    int
	RetrievedCodes []string
	Latency        time.Duration
}

// EvalSummary holds aggregate metrics across all golden queries.
type EvalSummary struct {
	TotalQueries       int
	ExtractionAccuracy float64
	AvgRecallAt10      float64
	AvgMRRAt10         float64
	AvgLatency         time.Duration
	QueriesWithHits    int // queries that returned at least 1 catalog entry
	ByStrategy         map[Strategy]*StrategySummary
	Results            []EvalResult `json:",omitempty"`
}

// StrategySummary holds metrics grouped by strategy.
type StrategySummary struct {
	Count              int
	ExtractionAccuracy float64
	AvgRecallAt10      float64
	AvgMRRAt10         float64
}
