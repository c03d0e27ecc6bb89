package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGuardrails_PassingSummary(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{MinExtractionAccuracy: 0.8, MinRecallAt10: 0.9})

	violations := g.Violations(&EvalSummary{ExtractionAccuracy: 0.8, AvgRecallAt10: 1.0})

	assert.Empty(t, violations)
}

func TestGuardrails_ReportsEachViolation(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{MinExtractionAccuracy: 0.8, MinRecallAt10: 0.9, MinMRRAt10: 0.5})

	violations := g.Violations(&EvalSummary{ExtractionAccuracy: 0.5, AvgRecallAt10: 0.95, AvgMRRAt10: 0.25})

	assert.Equal(t, []string{
		"extraction accuracy 0.500 below 0.800",
		"mrr@10 0.250 below 0.500",
	}, violations)
}

func TestGuardrails_ZeroThresholdsDisabled(t *testing.T) {
	g := NewGuardrails(GuardrailConfig{})

	assert.Empty(t, g.Violations(&EvalSummary{}))
}
