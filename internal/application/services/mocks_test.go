package services

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/zatekoja/rarediseaseguide/internal/domain/entities"
)

// Mocks

type MockReferenceProvider struct {
	mock.Mock
}

func (m *MockReferenceProvider) ListCatalog(ctx context.Context) ([]entities.CatalogEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.CatalogEntry), args.Error(1)
}

func (m *MockReferenceProvider) GetCrossReferences(ctx context.Context, code, lang string) (*entities.DiseaseRecord, error) {
	args := m.Called(ctx, code, lang)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// hand out a copy so cached and returned records never alias the fixture
	record := *args.Get(0).(*entities.DiseaseRecord)
	return &record, args.Error(1)
}

func (m *MockReferenceProvider) GetPhenotypes(ctx context.Context, code, lang string) ([]entities.Phenotype, error) {
	args := m.Called(ctx, code, lang)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Phenotype), args.Error(1)
}

func (m *MockReferenceProvider) GetGenes(ctx context.Context, code string) ([]entities.GeneAssociation, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.GeneAssociation), args.Error(1)
}

func (m *MockReferenceProvider) GetEpidemiology(ctx context.Context, code, lang string) ([]entities.Prevalence, error) {
	args := m.Called(ctx, code, lang)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Prevalence), args.Error(1)
}
