package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/zatekoja/rarediseaseguide/internal/domain/entities"
	"github.com/zatekoja/rarediseaseguide/internal/infrastructure/observability"
)

const (
	LanguagePortuguese = "pt"
	LanguageEnglish    = "en"

	orphanetDetailURL    = "https://www.orpha.net/%s/disease/detail/%s"
	maxContextPhenotypes = 10
)

var (
	portugueseChars        = regexp.MustCompile(`[áàâãéêíóôõúçÁÀÂÃÉÊÍÓÔÕÚÇ]`)
	portugueseWords        = regexp.MustCompile(`(?i)\b(ola|olá|sim|nao|não|como|que|doença|doenças|rara|raras|sobre|ajud|obrigad|quais|qual|sao|são|sintomas|ela|dele|disso|isso|esta|está)\b`)
	portugueseHistoryWords = regexp.MustCompile(`(?i)\b(doença|doenças|sintomas|é|são)\b`)
)

// ChatMessage is one turn of a conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// DiseaseSearcher resolves a free-text disease name to a record
type DiseaseSearcher interface {
	SearchDisease(ctx context.Context, term, lang string) (*entities.DiseaseRecord, bool)
}

// DiseaseLookup is the outcome of looking up the disease a chat message refers to
type DiseaseLookup struct {
	Candidates  []string                `json:"candidates"`
	Term        string                  `json:"term,omitempty"`
	Language    string                  `json:"language"`
	Disease     *entities.DiseaseRecord `json:"disease"`
	Context     string                  `json:"context,omitempty"`
	MoreInfoURL string                  `json:"more_info_url,omitempty"`
}

// DiseaseLookupService finds verified disease information for chat messages
type DiseaseLookupService struct {
	searcher DiseaseSearcher
}

// NewDiseaseLookupService creates a new lookup service
func NewDiseaseLookupService(searcher DiseaseSearcher) *DiseaseLookupService {
	return &DiseaseLookupService{searcher: searcher}
}

// Lookup extracts the disease a message is about and resolves it. A bare
// confirmation ("sim", "ok") refers to the disease named in the last assistant
// reply of history.
func (s *DiseaseLookupService) Lookup(ctx context.Context, message string, history []ChatMessage) *DiseaseLookup {
	logger := observability.LoggerFromContext(ctx)

	result := &DiseaseLookup{
		Candidates: []string{},
		Language:   DetectLanguage(message, history),
	}
	for _, name := range ExtractMultipleDiseaseNames(message) {
		if AcceptCandidate(message, name) {
			result.Candidates = append(result.Candidates, name)
		}
	}

	term, ok := "", false
	if IsConfirmation(message) {
		if last, found := lastAssistantMessage(history); found {
			term, ok = ExtractDiseaseName(last.Content)
			if ok {
				logger.Info().Str("term", term).Msg("User confirmed interest in previously mentioned disease")
			}
		}
	}
	if !ok {
		term, ok = ExtractDiseaseName(message)
	}
	if !ok || !AcceptCandidate(message, term) {
		logger.Info().Msg("No disease name in message")
		return result
	}
	result.Term = term

	record, found := s.searcher.SearchDisease(ctx, term, "")
	if !found {
		logger.Info().Str("term", term).Msg("No verified disease information found")
		return result
	}

	logger.Info().
		Str("term", term).
		Str("orphacode", record.Code).
		Msg("Found disease information")
	result.Disease = record
	result.Context = BuildDiseaseContext(record)
	result.MoreInfoURL = DiseaseDetailURL(result.Language, record.Code)
	return result
}

// DetectLanguage returns "pt" when the message or any earlier turn looks
// Portuguese and "en" otherwise.
func DetectLanguage(message string, history []ChatMessage) string {
	if portugueseChars.MatchString(message) || portugueseWords.MatchString(message) {
		return LanguagePortuguese
	}
	for _, msg := range history {
		if portugueseChars.MatchString(msg.Content) || portugueseHistoryWords.MatchString(msg.Content) {
			return LanguagePortuguese
		}
	}
	return LanguageEnglish
}

// DiseaseDetailURL links to the public Orphanet page of a disease
func DiseaseDetailURL(lang, code string) string {
	if lang != LanguagePortuguese {
		lang = LanguageEnglish
	}
	return fmt.Sprintf(orphanetDetailURL, lang, code)
}

// BuildDiseaseContext renders record as a plain-text fact sheet; empty fields are left out.
func BuildDiseaseContext(record *entities.DiseaseRecord) string {
	var b strings.Builder

	b.WriteString("Disease Information:\n")
	fmt.Fprintf(&b, "- Name: %s\n", record.Name)
	fmt.Fprintf(&b, "- Orphacode: ORPHA:%s\n", record.Code)

	if record.Definition != "" {
		fmt.Fprintf(&b, "- Definition: %s\n", record.Definition)
	}
	writeList(&b, "Also known as", record.Synonyms)
	writeList(&b, "ICD-10 codes", record.ICD10)
	writeList(&b, "ICD-11 codes", record.ICD11)
	writeList(&b, "OMIM references", record.OMIM)

	genes := make([]string, 0, len(record.Genes))
	for _, g := range record.Genes {
		genes = append(genes, fmt.Sprintf("%s (%s)", g.Symbol, g.AssociationType))
	}
	writeList(&b, "Associated genes", genes)

	phenotypes := make([]string, 0, maxContextPhenotypes)
	for i, p := range record.Phenotypes {
		if i == maxContextPhenotypes {
			break
		}
		phenotypes = append(phenotypes, p.Name)
	}
	writeList(&b, "Common symptoms/phenotypes", phenotypes)

	prevalences := make([]string, 0, len(record.Epidemiology))
	for _, e := range record.Epidemiology {
		prevalences = append(prevalences, e.PrevalenceClass)
	}
	writeList(&b, "Prevalence", prevalences)

	return b.String()
}

func writeList(b *strings.Builder, label string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, strings.Join(values, ", "))
}

func lastAssistantMessage(history []ChatMessage) (ChatMessage, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == "assistant" {
			return history[i], true
		}
	}
	return ChatMessage{}, false
}
