package entities

import "strconv"

// UnknownDiseaseName is used when the reference service returns a record without any name field.
const UnknownDiseaseName = "Unknown"

// CatalogEntry is one disease of the reference catalog as listed by the classification endpoint.
type CatalogEntry struct {
	Code          int    `json:"ORPHAcode"`
	PreferredTerm string `json:"preferredTerm"`
}

// CodeString returns the catalog code in the form used by the detail endpoints.
func (e CatalogEntry) CodeString() string {
	return strconv.Itoa(e.Code)
}

// DiseaseRecord is the resolved, denormalized view of a single disease.
//
// Phenotypes, Genes and Epidemiology are nil when the corresponding enrichment
// call failed and an empty slice when it succeeded without data.
type DiseaseRecord struct {
	Code         string            `json:"orphacode"`
	Name         string            `json:"name"`
	Synonyms     []string          `json:"synonyms"`
	Definition   string            `json:"definition,omitempty"`
	ICD10        []string          `json:"icd10"`
	ICD11        []string          `json:"icd11"`
	OMIM         []string          `json:"omim"`
	Phenotypes   []Phenotype       `json:"phenotypes"`
	Genes        []GeneAssociation `json:"genes"`
	Epidemiology []Prevalence      `json:"epidemiology"`
}

// Phenotype is an HPO term associated with a disease.
type Phenotype struct {
	HPOID     string `json:"hpoid"`
	Name      string `json:"name"`
	Frequency string `json:"frequency,omitempty"`
}

// GeneAssociation links a disease to a gene.
type GeneAssociation struct {
	Symbol          string `json:"symbol"`
	Name            string `json:"name"`
	AssociationType string `json:"type"`
}

// Prevalence is one epidemiological estimate for a disease.
type Prevalence struct {
	PrevalenceClass string `json:"prevalence"`
	GeographicArea  string `json:"geographic,omitempty"`
}
