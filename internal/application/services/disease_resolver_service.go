package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/zatekoja/rarediseaseguide/internal/domain/entities"
	"github.com/zatekoja/rarediseaseguide/internal/domain/providers"
	"github.com/zatekoja/rarediseaseguide/internal/infrastructure/observability"
)

// Cache namespaces; the namespace is also the key prefix.
const (
	cacheNamespaceSearch       = "search"
	cacheNamespaceDetails      = "details"
	cacheNamespacePhenotypes   = "phenotypes"
	cacheNamespaceGenes        = "genes"
	cacheNamespaceEpidemiology = "epidemiology"
)

// DiseaseResolverService turns a free-text disease name into a DiseaseRecord.
// Every operation is best effort: upstream failures are logged and reported as
// "nothing found", never returned to the caller.
type DiseaseResolverService struct {
	provider    providers.DiseaseReferenceProvider
	index       *DiseaseSearchIndex
	cache       providers.CacheProvider
	ttl         time.Duration
	defaultLang string
	metrics     *observability.Metrics
}

// NewDiseaseResolverService creates a resolver sharing index and cache across requests
func NewDiseaseResolverService(
	provider providers.DiseaseReferenceProvider,
	index *DiseaseSearchIndex,
	cache providers.CacheProvider,
	ttl time.Duration,
	defaultLang string,
	metrics *observability.Metrics,
) *DiseaseResolverService {
	if defaultLang == "" {
		defaultLang = "en"
	}
	return &DiseaseResolverService{
		provider:    provider,
		index:       index,
		cache:       cache,
		ttl:         ttl,
		defaultLang: defaultLang,
		metrics:     metrics,
	}
}

// DefaultLang returns the language used when a caller passes none
func (s *DiseaseResolverService) DefaultLang() string {
	return s.defaultLang
}

// Index returns the catalog index the resolver searches
func (s *DiseaseResolverService) Index() *DiseaseSearchIndex {
	return s.index
}

// SearchDisease resolves term to the best-matching disease record in lang.
// The outcome is cached under the search key, including "nothing found" once a
// catalog match was attempted.
func (s *DiseaseResolverService) SearchDisease(ctx context.Context, term, lang string) (*entities.DiseaseRecord, bool) {
	lang = s.lang(lang)
	ctx, span := observability.StartSpan(ctx, "DiseaseResolver.SearchDisease")
	defer span.End()
	observability.SetSpanAttributes(span,
		attribute.String("disease.term", term),
		attribute.String("disease.lang", lang),
	)

	logger := observability.LoggerFromContext(ctx)
	key := fmt.Sprintf("%s:%s:%s", cacheNamespaceSearch, term, lang)

	var cached *entities.DiseaseRecord
	if s.readCache(ctx, cacheNamespaceSearch, key, &cached) {
		observability.RecordResolution(ctx, s.metrics, "cached")
		return cached, cached != nil
	}

	if !s.index.IsLoaded() {
		if err := s.index.EnsureLoaded(ctx); err != nil {
			logger.Warn().Err(err).Msg("Disease index unavailable")
		}
		if !s.index.IsLoaded() {
			observability.RecordResolution(ctx, s.metrics, "index_unavailable")
			return nil, false
		}
	}

	matches := s.index.FuzzySearch(term, 1)
	if len(matches) == 0 {
		logger.Info().Str("term", term).Msg("No catalog match")
		observability.RecordResolution(ctx, s.metrics, "no_match")
		return nil, false
	}

	best := matches[0]
	logger.Info().
		Str("term", term).
		Str("match", best.PreferredTerm).
		Int("orphacode", best.Code).
		Msg("Catalog match found")

	record, found := s.GetDiseaseDetails(ctx, best.CodeString(), lang)
	if ctx.Err() != nil {
		// the caller went away; what we have says nothing about the upstream
		logger.Info().Err(ctx.Err()).Str("term", term).Msg("Search abandoned, result not cached")
		return record, found
	}
	s.writeCache(ctx, key, record)

	if found {
		observability.RecordResolution(ctx, s.metrics, "resolved")
	} else {
		observability.RecordResolution(ctx, s.metrics, "details_unavailable")
	}
	return record, found
}

// GetDiseaseDetails fetches the record for code in lang, enriched with phenotypes,
// genes and epidemiology. A failed enrichment leaves its field nil; only a failed
// cross-reference fetch makes the whole lookup fail.
func (s *DiseaseResolverService) GetDiseaseDetails(ctx context.Context, code, lang string) (*entities.DiseaseRecord, bool) {
	lang = s.lang(lang)
	ctx, span := observability.StartSpan(ctx, "DiseaseResolver.GetDiseaseDetails")
	defer span.End()
	observability.SetSpanAttributes(span,
		attribute.String("disease.orphacode", code),
		attribute.String("disease.lang", lang),
	)

	key := fmt.Sprintf("%s:%s:%s", cacheNamespaceDetails, code, lang)

	var cached *entities.DiseaseRecord
	if s.readCache(ctx, cacheNamespaceDetails, key, &cached) && cached != nil {
		return cached, true
	}

	start := time.Now()
	record, err := s.provider.GetCrossReferences(ctx, code, lang)
	observability.RecordUpstreamMetric(ctx, s.metrics, "rd-cross-referencing", err == nil, time.Since(start))
	if err != nil {
		observability.RecordError(span, err)
		observability.LoggerFromContext(ctx).Warn().Err(err).
			Str("orphacode", code).
			Str("lang", lang).
			Msg("Failed to fetch disease cross references")
		return nil, false
	}

	var (
		phenotypes   []entities.Phenotype
		genes        []entities.GeneAssociation
		epidemiology []entities.Prevalence
	)

	var g errgroup.Group
	g.Go(func() error {
		phenotypes = s.GetPhenotypes(ctx, code, lang)
		return nil
	})
	g.Go(func() error {
		genes = s.GetGenes(ctx, code)
		return nil
	})
	g.Go(func() error {
		epidemiology = s.GetEpidemiology(ctx, code, lang)
		return nil
	})
	_ = g.Wait()

	record.Phenotypes = phenotypes
	record.Genes = genes
	record.Epidemiology = epidemiology

	if ctx.Err() != nil {
		return record, true
	}
	s.writeCache(ctx, key, record)
	return record, true
}

// GetPhenotypes returns the HPO phenotypes of code, or nil when the fetch failed
func (s *DiseaseResolverService) GetPhenotypes(ctx context.Context, code, lang string) []entities.Phenotype {
	lang = s.lang(lang)
	key := fmt.Sprintf("%s:%s:%s", cacheNamespacePhenotypes, code, lang)

	var cached []entities.Phenotype
	if s.readCache(ctx, cacheNamespacePhenotypes, key, &cached) && cached != nil {
		return cached
	}

	start := time.Now()
	phenotypes, err := s.provider.GetPhenotypes(ctx, code, lang)
	observability.RecordUpstreamMetric(ctx, s.metrics, "rd-phenotypes", err == nil, time.Since(start))
	if err != nil {
		s.logEnrichmentFailure(ctx, "phenotypes", code, err)
		return nil
	}

	s.writeCache(ctx, key, phenotypes)
	return phenotypes
}

// GetGenes returns the gene associations of code, or nil when the fetch failed
func (s *DiseaseResolverService) GetGenes(ctx context.Context, code string) []entities.GeneAssociation {
	key := fmt.Sprintf("%s:%s", cacheNamespaceGenes, code)

	var cached []entities.GeneAssociation
	if s.readCache(ctx, cacheNamespaceGenes, key, &cached) && cached != nil {
		return cached
	}

	start := time.Now()
	genes, err := s.provider.GetGenes(ctx, code)
	observability.RecordUpstreamMetric(ctx, s.metrics, "rd-associated-genes", err == nil, time.Since(start))
	if err != nil {
		s.logEnrichmentFailure(ctx, "genes", code, err)
		return nil
	}

	s.writeCache(ctx, key, genes)
	return genes
}

// GetEpidemiology returns the prevalence estimates of code, or nil when the fetch failed
func (s *DiseaseResolverService) GetEpidemiology(ctx context.Context, code, lang string) []entities.Prevalence {
	lang = s.lang(lang)
	key := fmt.Sprintf("%s:%s:%s", cacheNamespaceEpidemiology, code, lang)

	var cached []entities.Prevalence
	if s.readCache(ctx, cacheNamespaceEpidemiology, key, &cached) && cached != nil {
		return cached
	}

	start := time.Now()
	prevalences, err := s.provider.GetEpidemiology(ctx, code, lang)
	observability.RecordUpstreamMetric(ctx, s.metrics, "rd-epidemiology", err == nil, time.Since(start))
	if err != nil {
		s.logEnrichmentFailure(ctx, "epidemiology", code, err)
		return nil
	}

	s.writeCache(ctx, key, prevalences)
	return prevalences
}

func (s *DiseaseResolverService) lang(lang string) string {
	if lang == "" {
		return s.defaultLang
	}
	return lang
}

// readCache decodes a live entry into out and reports whether one was found.
func (s *DiseaseResolverService) readCache(ctx context.Context, namespace, key string, out interface{}) bool {
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, providers.ErrCacheMiss) {
			observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		observability.RecordCacheMiss(ctx, s.metrics, namespace)
		return false
	}

	if err := json.Unmarshal(data, out); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("Discarding undecodable cache entry")
		observability.RecordCacheMiss(ctx, s.metrics, namespace)
		return false
	}

	observability.RecordCacheHit(ctx, s.metrics, namespace)
	return true
}

func (s *DiseaseResolverService) writeCache(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("Failed to encode cache entry")
		return
	}

	seconds := int(s.ttl / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	if err := s.cache.Set(ctx, key, data, seconds); err != nil {
		observability.LoggerFromContext(ctx).Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

func (s *DiseaseResolverService) logEnrichmentFailure(ctx context.Context, resource, code string, err error) {
	observability.LoggerFromContext(ctx).Warn().Err(err).
		Str("resource", resource).
		Str("orphacode", code).
		Msg("Disease enrichment unavailable")
}
