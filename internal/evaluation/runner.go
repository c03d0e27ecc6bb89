package evaluation

import (
	"context"
	"time"

	"github.com/zatekoja/rarediseaseguide/internal/domain/entities"
)

const evalTopK = 10

// CatalogSearcher ranks catalog entries for a disease name.
type CatalogSearcher interface {
	FuzzySearch(term string, maxResults int) []entities.CatalogEntry
}

// NameExtractor pulls a disease name out of a chat message.
type NameExtractor func(query string) (string, bool)

// Runner runs evaluation across a set of golden queries.
type Runner struct {
	index   CatalogSearcher
	extract NameExtractor
}

func NewRunner(index CatalogSearcher, extract NameExtractor) *Runner {
	return &Runner{index: index, extract: extract}
}

// Run extracts a name from every golden query and ranks it against the
// catalog. Recall and MRR are averaged over queries that expect codes.
func (r *Runner) Run(ctx context.Context, queries []GoldenQuery) (*EvalSummary, error) {
	summary := &EvalSummary{
		TotalQueries: len(queries),
		ByStrategy:   make(map[Strategy]*StrategySummary),
		Results:      make([]EvalResult, 0, len(queries)),
	}
	acc := newAccumulator()

	for _, gq := range queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		name, ok := r.extract(gq.Query)
		if !ok {
			name = ""
		}

		var codes []string
		if name != "" {
			for _, entry := range r.index.FuzzySearch(name, evalTopK) {
				codes = append(codes, entry.CodeString())
			}
		}

		result := EvalResult{
			QueryID:        gq.ID,
			Query:          gq.Query,
			Strategy:       gq.Strategy,
			ExtractedName:  name,
			NameMatched:    NameMatches(gq.ExpectedName, name),
			RecallAt10:     RecallAtK(gq.ExpectedCodes, codes, evalTopK),
			MRRAt10:        MRRAtK(gq.ExpectedCodes, codes, evalTopK),
			ResultCount:    len(codes),
			RetrievedCodes: codes,
			Latency:        time.Since(start),
		}

		summary.Results = append(summary.Results, result)
		acc.add(summary, result, len(gq.ExpectedCodes) > 0)
	}

	acc.finalize(summary)
	return summary, nil
}

type accumulator struct {
	ranked        int
	rankedByStrat map[Strategy]int
}

func newAccumulator() *accumulator {
	return &accumulator{rankedByStrat: make(map[Strategy]int)}
}

func (a *accumulator) add(s *EvalSummary, res EvalResult, ranked bool) {
	s.AvgLatency += res.Latency
	if res.ResultCount > 0 {
		s.QueriesWithHits++
	}

	if _, ok := s.ByStrategy[res.Strategy]; !ok {
		s.ByStrategy[res.Strategy] = &StrategySummary{}
	}
	ss := s.ByStrategy[res.Strategy]
	ss.Count++

	if res.NameMatched {
		s.ExtractionAccuracy++
		ss.ExtractionAccuracy++
	}

	if ranked {
		a.ranked++
		a.rankedByStrat[res.Strategy]++
		s.AvgRecallAt10 += res.RecallAt10
		s.AvgMRRAt10 += res.MRRAt10
		ss.AvgRecallAt10 += res.RecallAt10
		ss.AvgMRRAt10 += res.MRRAt10
	}
}

func (a *accumulator) finalize(s *EvalSummary) {
	if s.TotalQueries > 0 {
		s.ExtractionAccuracy /= float64(s.TotalQueries)
		s.AvgLatency /= time.Duration(s.TotalQueries)
	}
	if a.ranked > 0 {
		s.AvgRecallAt10 /= float64(a.ranked)
		s.AvgMRRAt10 /= float64(a.ranked)
	}

	for strategy, ss := range s.ByStrategy {
		if ss.Count > 0 {
			ss.ExtractionAccuracy /= float64(ss.Count)
		}
		if n := a.rankedByStrat[strategy]; n > 0 {
			ss.AvgRecallAt10 /= float64(n)
			ss.AvgMRRAt10 /= float64(n)
		}
	}
}
