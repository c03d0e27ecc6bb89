package utils

// similarityRatio is the fraction of the shorter string's length that may be edited
// for two words to still count as similar.
const similarityRatio = 0.3

// LevenshteinDistance returns the edit distance between a and b, counting insertions,
// deletions and substitutions as 1. Strings are compared rune by rune.
func LevenshteinDistance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	m, n := len(ra), len(rb)

	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
		dp[i][0] = i
	}
	for j := 0; j <= n; j++ {
		dp[0][j] = j
	}

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if ra[i-1] == rb[j-1] {
				dp[i][j] = dp[i-1][j-1]
				continue
			}
			dp[i][j] = 1 + min(
				dp[i-1][j],   // deletion
				dp[i][j-1],   // insertion
				dp[i-1][j-1], // substitution
			)
		}
	}

	return dp[m][n]
}

// IsSimilar reports whether the distance between a and b is within 30% of the
// shorter string's length (rounded down). Callers normalise case beforehand.
func IsSimilar(a, b string) bool {
	shorter := min(len([]rune(a)), len([]rune(b)))
	maxDistance := int(float64(shorter) * similarityRatio)
	return LevenshteinDistance(a, b) <= maxDistance
}
