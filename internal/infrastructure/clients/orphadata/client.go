package orphadata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zatekoja/rarediseaseguide/internal/domain/entities"
	"github.com/zatekoja/rarediseaseguide/internal/domain/providers"
	apperrors "github.com/zatekoja/rarediseaseguide/pkg/errors"
)

// HTTPClient talks to the Orphadata REST API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ providers.DiseaseReferenceProvider = (*HTTPClient)(nil)

// NewClient creates a client for baseURL. A zero timeout means no client-side timeout.
func NewClient(baseURL string, timeout time.Duration) *HTTPClient {
	trimmed := strings.TrimRight(baseURL, "/")
	return &HTTPClient{
		baseURL: trimmed,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ListCatalog fetches GET /rd-classification/orphacodes.
func (c *HTTPClient) ListCatalog(ctx context.Context) ([]entities.CatalogEntry, error) {
	endpoint := fmt.Sprintf("%s/rd-classification/orphacodes", c.baseURL)

	var resp catalogResponse
	if err := c.doJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}

	if resp.Data == nil || !isJSONArray(resp.Data.Results) {
		return nil, apperrors.NewInternalError("invalid response structure from Orphadata", nil)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(resp.Data.Results, &raw); err != nil {
		return nil, apperrors.NewInternalError("invalid response structure from Orphadata", err)
	}

	entries := make([]entities.CatalogEntry, 0, len(raw))
	for _, item := range raw {
		var parsed catalogItem
		if err := json.Unmarshal(item, &parsed); err != nil || !parsed.ORPHAcode.Valid {
			continue
		}
		entries = append(entries, entities.CatalogEntry{
			Code:          parsed.ORPHAcode.Value,
			PreferredTerm: string(parsed.PreferredTerm),
		})
	}
	return entries, nil
}

// GetCrossReferences fetches GET /rd-cross-referencing/orphacodes/{code}?lang={lang}.
func (c *HTTPClient) GetCrossReferences(ctx context.Context, code, lang string) (*entities.DiseaseRecord, error) {
	endpoint := c.codeEndpoint("rd-cross-referencing", code, lang)

	var resp crossReferenceResponse
	if err := c.doJSON(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil || resp.Data.Results == nil {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no results in response for Orphacode %s", code))
	}

	r := resp.Data.Results
	record := &entities.DiseaseRecord{
		Code:     code,
		Name:     firstNonEmpty(r.PreferredTermSpaced, r.Name, r.PreferredTerm),
		Synonyms: []string{},
		ICD10:    []string{},
		ICD11:    []string{},
		OMIM:     []string{},
	}
	if record.Name == "" {
		record.Name = entities.UnknownDiseaseName
	}

	for _, s := range r.SynonymList {
		if s.Synonym != "" {
			record.Synonyms = append(record.Synonyms, string(s.Synonym))
		}
	}

	var summary looseString
	if len(r.SummaryInformation) > 0 && r.SummaryInformation[0].TextSection != nil {
		summary = r.SummaryInformation[0].TextSection.Contents
	}
	record.Definition = firstNonEmpty(summary, r.Summary, r.Definition)

	for _, ref := range r.ExternalReference {
		if ref.Reference == "" {
			continue
		}
		switch ref.Source {
		case "ICD-10":
			record.ICD10 = append(record.ICD10, string(ref.Reference))
		case "ICD-11":
			record.ICD11 = append(record.ICD11, string(ref.Reference))
		case "OMIM":
			record.OMIM = append(record.OMIM, string(ref.Reference))
		}
	}

	return record, nil
}

// GetPhenotypes fetches GET /rd-phenotypes/orphacodes/{code}?lang={lang}.
func (c *HTTPClient) GetPhenotypes(ctx context.Context, code, lang string) ([]entities.Phenotype, error) {
	var resp phenotypeResponse
	if err := c.doJSON(ctx, c.codeEndpoint("rd-phenotypes", code, lang), &resp); err != nil {
		return nil, err
	}

	phenotypes := make([]entities.Phenotype, 0, len(resp.HPODisorderAssociationList))
	for _, assoc := range resp.HPODisorderAssociationList {
		p := entities.Phenotype{Frequency: assoc.HPOFrequency.name()}
		if assoc.HPO != nil {
			p.HPOID = string(assoc.HPO.HPOId)
			p.Name = string(assoc.HPO.HPOTerm)
		}
		phenotypes = append(phenotypes, p)
	}
	return phenotypes, nil
}

// GetGenes fetches GET /rd-associated-genes/orphacodes/{code}; the endpoint has no language.
func (c *HTTPClient) GetGenes(ctx context.Context, code string) ([]entities.GeneAssociation, error) {
	var resp geneResponse
	if err := c.doJSON(ctx, c.codeEndpoint("rd-associated-genes", code, ""), &resp); err != nil {
		return nil, err
	}

	genes := make([]entities.GeneAssociation, 0, len(resp.DisorderGeneAssociationList))
	for _, assoc := range resp.DisorderGeneAssociationList {
		g := entities.GeneAssociation{AssociationType: assoc.DisorderGeneAssociationType.name()}
		if assoc.Gene != nil {
			g.Symbol = string(assoc.Gene.Symbol)
			g.Name = string(assoc.Gene.Name)
		}
		genes = append(genes, g)
	}
	return genes, nil
}

// GetEpidemiology fetches GET /rd-epidemiology/orphacodes/{code}?lang={lang}.
func (c *HTTPClient) GetEpidemiology(ctx context.Context, code, lang string) ([]entities.Prevalence, error) {
	var resp epidemiologyResponse
	if err := c.doJSON(ctx, c.codeEndpoint("rd-epidemiology", code, lang), &resp); err != nil {
		return nil, err
	}

	prevalences := make([]entities.Prevalence, 0, len(resp.PrevalenceList))
	for _, prev := range resp.PrevalenceList {
		class := prev.PrevalenceClass.name()
		if class == "" {
			class = string(prev.ValMoy)
		}
		prevalences = append(prevalences, entities.Prevalence{
			PrevalenceClass: class,
			GeographicArea:  prev.PrevalenceGeographic.name(),
		})
	}
	return prevalences, nil
}

func (c *HTTPClient) codeEndpoint(resource, code, lang string) string {
	endpoint := fmt.Sprintf("%s/%s/orphacodes/%s", c.baseURL, resource, url.PathEscape(code))
	if lang != "" {
		endpoint = fmt.Sprintf("%s?lang=%s", endpoint, url.QueryEscape(lang))
	}
	return endpoint
}

func (c *HTTPClient) doJSON(ctx context.Context, endpoint string, out interface{}) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return apperrors.NewInternalError("failed to build Orphadata request", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return apperrors.NewExternalError("Orphadata request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return apperrors.NewExternalStatusError(
			fmt.Sprintf("Orphadata returned status %d", resp.StatusCode),
			resp.StatusCode,
		)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewInternalError("failed to decode Orphadata response", err)
	}

	return nil
}

func isJSONArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
