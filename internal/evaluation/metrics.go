package evaluation

import "strings"

// RecallAtK is the share of relevant codes that appear in the first k retrieved.
// Returns 0.0 if relevant is empty.
func RecallAtK(relevant, retrieved []string, k int) float64 {
	if len(relevant) == 0 {
		return 0.0
	}

	want := toSet(relevant)
	found := 0
	for _, code := range topK(retrieved, k) {
		if _, ok := want[code]; ok {
			found++
			delete(want, code)
		}
	}

	return float64(found) / float64(len(relevant))
}

// MRRAtK is the reciprocal rank of the first relevant code within the first k
// retrieved, or 0.0 when none is found.
func MRRAtK(relevant, retrieved []string, k int) float64 {
	if len(relevant) == 0 || len(retrieved) == 0 {
		return 0.0
	}

	want := toSet(relevant)
	for i, code := range topK(retrieved, k) {
		if _, ok := want[code]; ok {
			return 1.0 / float64(i+1)
		}
	}

	return 0.0
}

// NameMatches compares an extracted name with the expected one ignoring case
// and surrounding space. An empty expectation means nothing should be extracted.
func NameMatches(expected, extracted string) bool {
	return strings.EqualFold(strings.TrimSpace(expected), strings.TrimSpace(extracted))
}

func topK(retrieved []string, k int) []string {
	if k >= 0 && k < len(retrieved) {
		return retrieved[:k]
	}
	return retrieved
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
