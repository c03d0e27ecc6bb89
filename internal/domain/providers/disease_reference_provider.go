package providers

import (
	"context"

	"github.com/zatekoja/rarediseaseguide/internal/domain/entities"
)

// DiseaseReferenceProvider is the outbound port to the rare-disease reference service.
// Implementations return typed errors; callers decide whether a failure is soft.
type DiseaseReferenceProvider interface {
	// ListCatalog returns every catalog entry of the classification endpoint.
	ListCatalog(ctx context.Context) ([]entities.CatalogEntry, error)

	// GetCrossReferences returns the record shell (names, synonyms, definition, cross references).
	// The enrichment slices of the returned record are left nil.
	GetCrossReferences(ctx context.Context, code, lang string) (*entities.DiseaseRecord, error)

	GetPhenotypes(ctx context.Context, code, lang string) ([]entities.Phenotype, error)
	GetGenes(ctx context.Context, code string) ([]entities.GeneAssociation, error)
	GetEpidemiology(ctx context.Context, code, lang string) ([]entities.Prevalence, error)
}
