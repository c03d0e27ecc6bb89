package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/zatekoja/rarediseaseguide/internal/domain/entities"
	"github.com/zatekoja/rarediseaseguide/internal/domain/providers"
	"github.com/zatekoja/rarediseaseguide/internal/infrastructure/observability"
	"github.com/zatekoja/rarediseaseguide/pkg/retry"
	"github.com/zatekoja/rarediseaseguide/pkg/utils"
)

// Fuzzy search tiers. An entry is scored by the first tier it satisfies.
const (
	scoreExact     = 1000
	scorePrefix    = 500
	scoreWholeWord = 300
	scoreSubstring = 100
	scoreSimilar   = 50

	minSimilarTermLength = 4
	catalogLoadKey       = "catalog"
)

type indexedEntry struct {
	entry      entities.CatalogEntry
	normalized string
	words      []string
}

type scoredEntry struct {
	entry entities.CatalogEntry
	score int
}

// DiseaseSearchIndex keeps the reference catalog in memory and ranks it against free-text terms.
type DiseaseSearchIndex struct {
	provider providers.DiseaseReferenceProvider
	retryCfg retry.Config
	metrics  *observability.Metrics

	mu       sync.RWMutex
	entries  []indexedEntry
	loaded   bool
	loadedAt time.Time

	loads singleflight.Group
}

// NewDiseaseSearchIndex creates an empty index. Nothing is fetched until Warm or EnsureLoaded.
func NewDiseaseSearchIndex(
	provider providers.DiseaseReferenceProvider,
	retryCfg retry.Config,
	metrics *observability.Metrics,
) *DiseaseSearchIndex {
	return &DiseaseSearchIndex{
		provider: provider,
		retryCfg: retryCfg,
		metrics:  metrics,
	}
}

// Warm starts loading the catalog in the background and returns immediately.
func (idx *DiseaseSearchIndex) Warm(ctx context.Context) {
	go func() {
		if err := idx.EnsureLoaded(ctx); err != nil {
			observability.LoggerFromContext(ctx).Warn().Err(err).Msg("Disease index warm-up failed")
		}
	}()
}

// EnsureLoaded loads the catalog unless it is already loaded. Concurrent callers
// share a single in-flight load. A failed load leaves the index unloaded so the
// next call tries again.
func (idx *DiseaseSearchIndex) EnsureLoaded(ctx context.Context) error {
	if idx.IsLoaded() {
		return nil
	}

	// the shared load must outlive any single caller
	loadCtx := context.WithoutCancel(ctx)
	ch := idx.loads.DoChan(catalogLoadKey, func() (interface{}, error) {
		if idx.IsLoaded() {
			return nil, nil
		}
		return nil, idx.load(loadCtx)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsLoaded reports whether a catalog load has completed successfully.
func (idx *DiseaseSearchIndex) IsLoaded() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.loaded
}

// Size returns the number of catalog entries held.
func (idx *DiseaseSearchIndex) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// LoadedAt returns when the current catalog was installed; zero if never.
func (idx *DiseaseSearchIndex) LoadedAt() time.Time {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.loadedAt
}

func (idx *DiseaseSearchIndex) load(ctx context.Context) error {
	ctx, span := observability.StartSpan(ctx, "DiseaseSearchIndex.load")
	defer span.End()

	logger := observability.LoggerFromContext(ctx)
	start := time.Now()

	cfg := idx.retryCfg
	cfg.OnRetry = func(attempt int, err error, nextDelay time.Duration) {
		logger.Warn().Err(err).
			Int("attempt", attempt).
			Dur("next_delay", nextDelay).
			Msg("Catalog load failed, retrying")
	}

	var catalog []entities.CatalogEntry
	err := retry.Do(ctx, cfg, func(ctx context.Context) error {
		fetchStart := time.Now()
		entries, err := idx.provider.ListCatalog(ctx)
		observability.RecordUpstreamMetric(ctx, idx.metrics, "rd-classification", err == nil, time.Since(fetchStart))
		if err != nil {
			return err
		}
		catalog = entries
		return nil
	})
	if err != nil {
		observability.RecordError(span, err)
		observability.RecordCatalogLoad(ctx, idx.metrics, false, 0)
		logger.Error().Err(err).Msg("Failed to load disease catalog")
		return fmt.Errorf("failed to load disease catalog: %w", err)
	}

	indexed := make([]indexedEntry, 0, len(catalog))
	for _, entry := range catalog {
		normalized := utils.NormalizeTerm(entry.PreferredTerm)
		if normalized == "" {
			continue
		}
		indexed = append(indexed, indexedEntry{
			entry:      entry,
			normalized: normalized,
			words:      strings.Fields(normalized),
		})
	}

	idx.mu.Lock()
	idx.entries = indexed
	idx.loaded = true
	idx.loadedAt = time.Now()
	idx.mu.Unlock()

	observability.SetSpanAttributes(span, attribute.Int("catalog.entries", len(indexed)))
	observability.RecordCatalogLoad(ctx, idx.metrics, true, len(indexed))
	logger.Info().
		Int("entries", len(indexed)).
		Dur("duration", time.Since(start)).
		Msg("Disease catalog loaded")
	return nil
}

// FuzzySearch ranks catalog entries against term and returns at most maxResults,
// best first. Equal scores keep catalog order. An unloaded index yields no results.
func (idx *DiseaseSearchIndex) FuzzySearch(term string, maxResults int) []entities.CatalogEntry {
	results := []entities.CatalogEntry{}

	needle := utils.NormalizeTerm(term)
	if needle == "" || maxResults <= 0 {
		return results
	}

	idx.mu.RLock()
	entries := idx.entries
	loaded := idx.loaded
	idx.mu.RUnlock()
	if !loaded {
		return results
	}

	wholeWord := regexp.MustCompile(`\b` + regexp.QuoteMeta(needle) + `\b`)
	trySimilar := utils.WordCount(needle) == 1 && len([]rune(needle)) >= minSimilarTermLength

	scored := make([]scoredEntry, 0)
	for _, e := range entries {
		score := scoreEntry(e, needle, wholeWord, trySimilar)
		if score > 0 {
			scored = append(scored, scoredEntry{entry: e.entry, score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if len(scored) > maxResults {
		scored = scored[:maxResults]
	}
	for _, s := range scored {
		results = append(results, s.entry)
	}
	return results
}

func scoreEntry(e indexedEntry, needle string, wholeWord *regexp.Regexp, trySimilar bool) int {
	switch {
	case e.normalized == needle:
		return scoreExact
	case strings.HasPrefix(e.normalized, needle):
		return scorePrefix
	case wholeWord.MatchString(e.normalized):
		return scoreWholeWord
	case strings.Contains(e.normalized, needle):
		return scoreSubstring
	}

	if trySimilar {
		for _, word := range e.words {
			if utils.IsSimilar(word, needle) {
				return scoreSimilar
			}
		}
	}
	return 0
}
