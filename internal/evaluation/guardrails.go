package evaluation

import "fmt"

// GuardrailConfig holds the minimum scores an evaluation run must reach.
// Zero disables a check.
type GuardrailConfig struct {
	MinExtractionAccuracy float64
	MinRecallAt10         float64
	MinMRRAt10            float64
}

type Guardrails struct {
	config GuardrailConfig
}

func NewGuardrails(config GuardrailConfig) *Guardrails {
	return &Guardrails{config: config}
}

// Violations lists every threshold the summary falls below.
func (g *Guardrails) Violations(s *EvalSummary) []string {
	var out []string
	check := func(name string, got, floor float64) {
		if floor > 0 && got < floor {
			out = append(out, fmt.Sprintf("%s %.3f below %.3f", name, got, floor))
		}
	}
	check("extraction accuracy", s.ExtractionAccuracy, g.config.MinExtractionAccuracy)
	check("recall@10", s.AvgRecallAt10, g.config.MinRecallAt10)
	check("mrr@10", s.AvgMRRAt10, g.config.MinMRRAt10)
	return out
}
