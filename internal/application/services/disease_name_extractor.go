package services

import (
	"regexp"
	"strings"

	"github.com/zatekoja/rarediseaseguide/pkg/utils"
)

// Question forms in English, Portuguese, Spanish and French. Symptom/cause/treatment
// forms come before the generic "what is" forms of the same language so the generic
// pattern cannot capture the keyword as part of the name.
var questionPatterns = []*regexp.Regexp{
	// English
	regexp.MustCompile(`(?i)(?:what (?:are|is)|what're|tell me)?\s*(?:the\s+)?(?:symptoms?|causes?|treatments?)(?:\s+of|\s+for)\s+(.+?)(?:\?|$)`),
	regexp.MustCompile(`(?i)(?:explain|describe)?\s*(?:the\s+)?(?:symptoms?|causes?|treatments?)(?:\s+of|\s+for)\s+(.+?)(?:\?|$)`),
	regexp.MustCompile(`(?i)(?:what is|tell me about|explain|describe|information about|info on)\s+(.+?)(?:\?|$)`),
	regexp.MustCompile(`(?i)(?:do you know about|have you heard of)\s+(.+?)(?:\?|$)`),

	// Portuguese
	regexp.MustCompile(`(?i)(?:quais\s+)?(?:s(?:ã|a)o|sao)?\s*(?:os?|as?)\s+(?:sintomas?|causas?|tratamentos?)(?:\s+d[aeo])\s+(?:a |o |as |os )?(.+?)(?:\?|$)`),
	regexp.MustCompile(`(?i)(?:o que (?:é|e)|explica(?:-me)?|fala(?:-me)? (?:de|sobre)|informa(?:ção|cao) sobre)\s+(?:a |o |as |os )?(.+?)(?:\?|$)`),
	regexp.MustCompile(`(?i)(?:conheces|sabes algo sobre)\s+(?:a |o |as |os )?(.+?)(?:\?|$)`),

	// Spanish
	regexp.MustCompile(`(?i)(?:cuáles\s+son|cu[aá]les)?\s*(?:los?|las?)\s+(?:síntomas?|causas?|tratamientos?)(?:\s+de)\s+(?:la |el |las |los )?(.+?)(?:\?|$)`),
	regexp.MustCompile(`(?i)(?:qué es|cuéntame sobre|explica|información sobre)\s+(?:la |el |las |los )?(.+?)(?:\?|$)`),

	// French
	regexp.MustCompile(`(?i)(?:quels\s+sont)?\s*(?:les?)\s+(?:symptômes?|causes?|traitements?)(?:\s+de)\s+(?:la |le |les |l')?(.+?)(?:\?|$)`),
	regexp.MustCompile(`(?i)(?:qu'est-ce que|parle(?:-moi)? de|explique|information sur)\s+(?:la |le |les |l')?(.+?)(?:\?|$)`),
}

// Compound medical names: "X syndrome", "doença de X", hyphenated eponyms, "X type 2".
var medicalTermPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:syndrome(?:\s+de)?|s(?:í|i)ndrome(?:\s+de)?)\s+([a-zA-ZÀ-ÿ\-]+(?:\s+[a-zA-ZÀ-ÿ\-]+)*)`),
	regexp.MustCompile(`(?i)([a-zA-ZÀ-ÿ\-]+(?:\s+[a-zA-ZÀ-ÿ\-]+)*)\s+(?:syndrome|s(?:í|i)ndrome)`),

	regexp.MustCompile(`(?i)(?:disease|doença|enfermedad|maladie)(?:\s+de(?:\s+la)?|\s+of)?\s+([a-zA-ZÀ-ÿ\-]+(?:\s+[a-zA-ZÀ-ÿ\-]+)*)`),
	regexp.MustCompile(`(?i)([a-zA-ZÀ-ÿ\-]+(?:\s+[a-zA-ZÀ-ÿ\-]+)*)\s+(?:disease|doença|enfermedad|maladie)`),

	regexp.MustCompile(`(?i)([a-zA-ZÀ-ÿ\-]+(?:\s+[a-zA-ZÀ-ÿ\-]+)*)\s+(?:disorder|transtorno|trastorno|trouble)`),

	regexp.MustCompile(`\b([A-Z][a-zA-ZÀ-ÿ]*\-[A-Z][a-zA-ZÀ-ÿ]*(?:\s+[a-zA-ZÀ-ÿ]+)?)\b`),

	regexp.MustCompile(`(?i)\b([a-zA-ZÀ-ÿ]+)\s+(?:type|tipo|grade)\s+[A-Z0-9]+`),
}

var (
	capitalizedPhrase = regexp.MustCompile(`\b([A-Z][a-zA-ZÀ-ÿ]+(?:['’]?s)?(?:\s+[A-Z]?[a-zA-ZÀ-ÿ\-]+)*)\b`)
	questionWord      = regexp.MustCompile(`(?i)^(What|Tell|Explain|Who|Where|When|Why|How|O|A|The|La|Le|El)$`)
	conversationVerbs = regexp.MustCompile(`(?i)\b(faz|me|uma|qual|como|what|how|tell|make|do|does|is|are|have)\b`)

	trailingPunctuation = regexp.MustCompile(`[?!.,;:]+$`)
	medicalKeywords     = regexp.MustCompile(`(?i)\b(syndrome|s(?:í|i)ndrome|disease|doença|enfermedad|maladie|disorder|transtorno|trastorno|trouble)(?:\s+de(?:\s+la)?|\s+of|\s+d[aeo])?\b`)
	conjunctions        = regexp.MustCompile(`(?i)\s+(?:and|or|e|ou|y|et)\s+`)
)

var extractorStopWords = toSet(
	// English
	"a", "an", "the", "is", "are", "was", "were", "be", "been", "being",
	"have", "has", "had", "do", "does", "did", "will", "would", "could",
	"should", "may", "might", "can", "this", "that", "these", "those",
	"what", "which", "who", "when", "where", "why", "how", "about", "with",
	"symptoms", "symptom", "causes", "cause", "treatment", "cure",

	// Portuguese
	"o", "os", "as", "um", "uma", "uns", "umas", "de", "da", "do",
	"das", "dos", "em", "no", "na", "nos", "nas", "por", "para", "que",
	"qual", "quais", "quando", "onde", "como", "porque", "com", "sem",
	"sintomas", "sintoma", "causas", "causa", "tratamento", "cura",
	"são", "é", "sao", "e",

	// Spanish
	"el", "la", "los", "las", "un", "una", "unos", "unas", "del", "al",
	"qué", "cual", "cuales", "cuando", "donde", "con",
	"síntomas", "síntoma", "tratamiento",

	// French
	"le", "les", "une", "des", "du", "à", "avec",
	"quoi", "quel", "quand", "où", "comment", "pourquoi",
	"symptômes", "symptôme", "traitement",
)

// Messages the chat layer never treats as a disease name.
var (
	greetingPattern     = regexp.MustCompile(`(?i)^(ola|olá|oi|hi|hello|hey|bom dia|boa tarde|boa noite|good morning|good afternoon|good evening)$`)
	confirmationPattern = regexp.MustCompile(`(?i)^(sim|yes|yeah|yep|ok|okay|claro|s|y)$`)
)

// ExtractDiseaseName returns the phrase in query most likely to name a disease.
// It tries, in order: question patterns, compound medical terms, capitalized
// phrases and finally the whole query when it is a short bare term.
func ExtractDiseaseName(query string) (string, bool) {
	q := strings.TrimSpace(query)
	if q == "" {
		return "", false
	}

	for _, pattern := range questionPatterns {
		m := pattern.FindStringSubmatch(q)
		if m == nil || m[1] == "" {
			continue
		}
		if extracted := cleanExtractedTerm(m[1]); len([]rune(extracted)) >= 3 {
			return extracted, true
		}
	}

	for _, pattern := range medicalTermPatterns {
		for _, m := range pattern.FindAllStringSubmatch(q, -1) {
			raw := m[1]
			if raw == "" {
				raw = m[0]
			}
			extracted := cleanExtractedTerm(raw)
			words := utils.WordCount(extracted)
			if len([]rune(extracted)) >= 3 && words >= 1 && words <= 6 {
				return extracted, true
			}
		}
	}

	for _, m := range capitalizedPhrase.FindAllStringSubmatch(q, -1) {
		raw := strings.TrimSpace(m[1])
		if questionWord.MatchString(raw) {
			continue
		}
		extracted := cleanExtractedTerm(raw)
		words := utils.WordCount(extracted)
		if len([]rune(extracted)) >= 4 && words >= 1 && words <= 4 {
			return extracted, true
		}
	}

	cleaned := cleanExtractedTerm(q)
	words := utils.WordCount(cleaned)
	if !conversationVerbs.MatchString(cleaned) && len([]rune(cleaned)) >= 3 && words <= 2 {
		return cleaned, true
	}

	return "", false
}

// ExtractMultipleDiseaseNames runs the extractor on the whole query and then on
// each fragment between conjunctions, keeping first-seen order without duplicates.
func ExtractMultipleDiseaseNames(query string) []string {
	names := []string{}
	seen := make(map[string]struct{})
	add := func(name string, ok bool) {
		if !ok {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	add(ExtractDiseaseName(query))
	for _, part := range conjunctions.Split(query, -1) {
		add(ExtractDiseaseName(part))
	}
	return names
}

// AcceptCandidate applies the chat-side filter to an extracted name: greetings
// are never diseases and names of three characters or fewer are discarded.
func AcceptCandidate(message, candidate string) bool {
	if greetingPattern.MatchString(strings.TrimSpace(message)) {
		return false
	}
	return len([]rune(candidate)) > 3
}

// IsConfirmation reports whether message is a bare yes/ok style reply.
func IsConfirmation(message string) bool {
	return confirmationPattern.MatchString(strings.TrimSpace(message))
}

func cleanExtractedTerm(term string) string {
	cleaned := strings.TrimSpace(trailingPunctuation.ReplaceAllString(strings.TrimSpace(term), ""))
	cleaned = strings.TrimSpace(medicalKeywords.ReplaceAllString(cleaned, ""))

	words := strings.Fields(cleaned)
	kept := make([]string, 0, len(words))
	for i, word := range words {
		interior := i > 0 && i < len(words)-1
		if interior {
			kept = append(kept, word)
			continue
		}
		if _, stop := extractorStopWords[strings.ToLower(word)]; !stop {
			kept = append(kept, word)
		}
	}

	return strings.TrimSpace(strings.Join(kept, " "))
}

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
