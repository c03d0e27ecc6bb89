package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/rarediseaseguide/internal/domain/entities"
	"github.com/zatekoja/rarediseaseguide/internal/infrastructure/clients/orphadata"
	"github.com/zatekoja/rarediseaseguide/pkg/retry"
)

func singleAttempt() retry.Config {
	return retry.Config{MaxAttempts: 1}
}

func testCatalog() []entities.CatalogEntry {
	return []entities.CatalogEntry{
		{Code: 1, PreferredTerm: "Marfanoid syndrome"},
		{Code: 558, PreferredTerm: "Marfan syndrome"},
		{Code: 2, PreferredTerm: "Neonatal Marfan syndrome"},
		{Code: 3, PreferredTerm: "Congenital contractural arachnodactyly"},
		{Code: 4, PreferredTerm: "Pseudomarfanism"},
		{Code: 5, PreferredTerm: ""},
		{Code: 6, PreferredTerm: "Marfam disease"},
	}
}

func newLoadedIndex(t *testing.T, catalog []entities.CatalogEntry) *DiseaseSearchIndex {
	t.Helper()
	provider := new(MockReferenceProvider)
	provider.On("ListCatalog", mock.Anything).Return(catalog, nil).Once()

	idx := NewDiseaseSearchIndex(provider, singleAttempt(), nil)
	require.NoError(t, idx.EnsureLoaded(context.Background()))
	return idx
}

func codes(entries []entities.CatalogEntry) []int {
	out := make([]int, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Code)
	}
	return out
}

func TestFuzzySearch_Tiers(t *testing.T) {
	idx := newLoadedIndex(t, testCatalog())

	// prefix ties keep catalog order, then whole word, substring, similar word
	results := idx.FuzzySearch("marfan", 10)
	assert.Equal(t, []int{1, 558, 2, 4, 6}, codes(results))
}

func TestFuzzySearch_ExactMatchRanksFirst(t *testing.T) {
	idx := newLoadedIndex(t, testCatalog())

	results := idx.FuzzySearch("Marfan syndrome", 5)
	require.NotEmpty(t, results)
	assert.Equal(t, 558, results[0].Code)
	assert.Equal(t, []int{558, 2}, codes(results))
}

func TestFuzzySearch_CaseAndWhitespaceInsensitive(t *testing.T) {
	idx := newLoadedIndex(t, testCatalog())

	results := idx.FuzzySearch("  MARFAN SYNDROME ", 1)
	require.Len(t, results, 1)
	assert.Equal(t, 558, results[0].Code)
}

func TestFuzzySearch_MaxResults(t *testing.T) {
	idx := newLoadedIndex(t, testCatalog())

	assert.Equal(t, []int{1, 558}, codes(idx.FuzzySearch("marfan", 2)))
	assert.Empty(t, idx.FuzzySearch("marfan", 0))
}

func TestFuzzySearch_NoMatch(t *testing.T) {
	idx := newLoadedIndex(t, testCatalog())

	results := idx.FuzzySearch("zzzznotadisease", 5)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestFuzzySearch_SimilarityOnlyForSingleLongTerms(t *testing.T) {
	idx := newLoadedIndex(t, []entities.CatalogEntry{
		{Code: 10, PreferredTerm: "Gaucher disease"},
		{Code: 11, PreferredTerm: "Fabry disease"},
	})

	assert.Equal(t, []int{10}, codes(idx.FuzzySearch("goucher", 5)))
	// three letters is below the similarity floor
	assert.Empty(t, idx.FuzzySearch("fbr", 5))
	// multi-word terms never use similarity
	assert.Empty(t, idx.FuzzySearch("goucher diseasr", 5))
}

func TestFuzzySearch_TermIsMatchedLiterally(t *testing.T) {
	idx := newLoadedIndex(t, []entities.CatalogEntry{
		{Code: 20, PreferredTerm: "Deletion (22q11)"},
	})

	assert.Equal(t, []int{20}, codes(idx.FuzzySearch("(22q11", 5)))
	assert.Empty(t, idx.FuzzySearch(".*", 5))
}

func TestFuzzySearch_UnloadedIndexReturnsEmpty(t *testing.T) {
	idx := NewDiseaseSearchIndex(new(MockReferenceProvider), singleAttempt(), nil)

	assert.False(t, idx.IsLoaded())
	assert.Empty(t, idx.FuzzySearch("marfan", 5))
}

func TestLoad_SkipsEntriesWithoutName(t *testing.T) {
	idx := newLoadedIndex(t, testCatalog())

	assert.True(t, idx.IsLoaded())
	assert.Equal(t, 6, idx.Size())
	assert.False(t, idx.LoadedAt().IsZero())
}

func TestEnsureLoaded_ConcurrentCallersShareOneFetch(t *testing.T) {
	var fetches int32
	started := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rd-classification/orphacodes", r.URL.Path)
		atomic.AddInt32(&fetches, 1)
		once.Do(func() { close(started) })
		<-release
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"results":[{"ORPHAcode":558,"preferredTerm":"Marfan syndrome"}]}}`))
	}))
	defer srv.Close()

	idx := NewDiseaseSearchIndex(orphadata.NewClient(srv.URL, 5*time.Second), singleAttempt(), nil)

	const callers = 20
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- idx.EnsureLoaded(context.Background())
		}()
	}

	<-started
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches))
	assert.True(t, idx.IsLoaded())
	assert.Equal(t, 1, idx.Size())

	// already loaded: no further fetch
	require.NoError(t, idx.EnsureLoaded(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&fetches))
}

func TestEnsureLoaded_FailureAllowsRetry(t *testing.T) {
	provider := new(MockReferenceProvider)
	provider.On("ListCatalog", mock.Anything).Return(nil, errors.New("connection refused")).Once()
	provider.On("ListCatalog", mock.Anything).Return(testCatalog(), nil).Once()

	idx := NewDiseaseSearchIndex(provider, singleAttempt(), nil)

	err := idx.EnsureLoaded(context.Background())
	assert.Error(t, err)
	assert.False(t, idx.IsLoaded())
	assert.Empty(t, idx.FuzzySearch("marfan", 5))

	require.NoError(t, idx.EnsureLoaded(context.Background()))
	assert.True(t, idx.IsLoaded())
	provider.AssertNumberOfCalls(t, "ListCatalog", 2)
}

func TestEnsureLoaded_RetriesWithinOneLoad(t *testing.T) {
	provider := new(MockReferenceProvider)
	provider.On("ListCatalog", mock.Anything).Return(nil, errors.New("timeout")).Twice()
	provider.On("ListCatalog", mock.Anything).Return(testCatalog(), nil).Once()

	cfg := retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, BackoffFactor: 2}
	idx := NewDiseaseSearchIndex(provider, cfg, nil)

	require.NoError(t, idx.EnsureLoaded(context.Background()))
	assert.True(t, idx.IsLoaded())
	provider.AssertNumberOfCalls(t, "ListCatalog", 3)
}

func TestEnsureLoaded_MalformedCatalogLeavesIndexUnloaded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"results":{"ORPHAcode":558}}}`))
	}))
	defer srv.Close()

	idx := NewDiseaseSearchIndex(orphadata.NewClient(srv.URL, time.Second), singleAttempt(), nil)

	assert.Error(t, idx.EnsureLoaded(context.Background()))
	assert.False(t, idx.IsLoaded())
}

func TestEnsureLoaded_CallerCancellationDoesNotAbortSharedLoad(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(`{"data":{"results":[{"ORPHAcode":558,"preferredTerm":"Marfan syndrome"}]}}`))
	}))
	defer srv.Close()

	idx := NewDiseaseSearchIndex(orphadata.NewClient(srv.URL, 5*time.Second), singleAttempt(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, idx.EnsureLoaded(ctx), context.DeadlineExceeded)

	close(release)
	require.NoError(t, idx.EnsureLoaded(context.Background()))
	assert.True(t, idx.IsLoaded())
}
