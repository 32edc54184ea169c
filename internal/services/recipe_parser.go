package services

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/foxxcyber/grocery-assistant/internal/models"
)

// Characters that may make up a leading amount: digits, fractions, ranges, approximations
const amountChars = `[\d\s/.\-+~¼½¾⅓⅔⅛⅜⅝⅞]`

// RecipeParser turns free-form recipe text into searchable ingredient names.
// It holds only compiled patterns and is safe for concurrent use.
type RecipeParser struct {
	leadingMeasurement  *regexp.Regexp
	trailingMeasurement *regexp.Regexp
	ofQuantity          *regexp.Regexp
	headerMeasurement   *regexp.Regexp
	parenthetical       *regexp.Regexp
	bracketed           *regexp.Regexp
	clauseSeparator     *regexp.Regexp
	eachPrefix          *regexp.Regexp
	suchAs              *regexp.Regexp
	orSeparator         *regexp.Regexp
	andSeparator        *regexp.Regexp
	trailingClauses     []*regexp.Regexp
	brands              *regexp.Regexp
	forThePrefix        *regexp.Regexp
	forPrefix           *regexp.Regexp
}

// NewRecipeParser compiles the parser's patterns
func NewRecipeParser() *RecipeParser {
	units := unitAlternation()

	return &RecipeParser{
		// "2 tbsp", "1 (15 ounce) can", "1 1/2 cups", "2 tablespoons to ¼ cup".
		// The unit must be followed by whitespace so "g" never eats "green".
		leadingMeasurement: regexp.MustCompile(fmt.Sprintf(
			`(?i)^%[1]s+\s*(\([^)]*\))?\s*(%[2]s)?\.?\s+(to\s+%[1]s+\s*(%[2]s)?\.?\s*)?`,
			amountChars, units,
		)),
		// "crushed tomatoes 1 can"
		trailingMeasurement: regexp.MustCompile(fmt.Sprintf(`(?i)\s+[\d\s/.\-]+\s*(%s)\s*$`, units)),
		// "zest and juice of 1 lemon"
		ofQuantity:        regexp.MustCompile(`(?i)^[a-zA-Z\s]+\s+of\s+\d+\s+`),
		headerMeasurement: regexp.MustCompile(`(?i)\d+[\s\-]*(/\d+)?\s*(cups?|tbsp?|tsp?|oz|lbs?|g|kg)`),
		parenthetical:     regexp.MustCompile(`\([^)]*\)`),
		bracketed:         regexp.MustCompile(`\[[^\]]*\]`),
		// Commas, or a dash with whitespace on both sides (not "store-bought")
		clauseSeparator: regexp.MustCompile(`,|\s+[\-–—]\s+`),
		eachPrefix:      regexp.MustCompile(`(?i)^each[\s:]+`),
		suchAs:          regexp.MustCompile(`(?i)\s+such\s+as\s+`),
		orSeparator:     regexp.MustCompile(`(?i)\s+or\s+`),
		andSeparator:    regexp.MustCompile(`(?i)\s+and\s+`),
		trailingClauses: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\s+plus\s+.*$`),
			regexp.MustCompile(`(?i)\s+for\s+.*$`),
			regexp.MustCompile(`(?i)\s+to\s+taste.*$`),
			regexp.MustCompile(`(?i)\s+as\s+needed.*$`),
			regexp.MustCompile(`(?i)\s+by\s+hand.*$`),
			regexp.MustCompile(`(?i)\s+with\s+.*$`),
			regexp.MustCompile(`(?i)\s+omit\s+.*$`),
			regexp.MustCompile(`(?i)\.\s*See\s+Note.*$`),
			regexp.MustCompile(`(?i)\s+See\s+Note.*$`),
		},
		brands:       regexp.MustCompile(`(?i)\b(?:` + brandAlternation() + `)\b`),
		forThePrefix: regexp.MustCompile(`(?i)^for\s+the\s+`),
		forPrefix:    regexp.MustCompile(`(?i)^for\s+`),
	}
}

var defaultRecipeParser = NewRecipeParser()

// ParseRecipeText parses recipe text with the shared parser
func ParseRecipeText(text string) []models.ParsedIngredient {
	return defaultRecipeParser.Parse(text)
}

// Parse walks the text line by line. Section headers set the section for the
// lines that follow, boilerplate headers are skipped, and every other line is
// parsed as an ingredient. Lines that yield no usable name are dropped.
func (p *RecipeParser) Parse(text string) []models.ParsedIngredient {
	ingredients := make([]models.ParsedIngredient, 0)
	section := ""

	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if p.IsGenericHeader(line) {
			continue
		}

		if p.IsSectionHeader(line) {
			section = p.SectionName(line)
			continue
		}

		ingredient, ok := p.ParseLine(line)
		if !ok {
			continue
		}
		if section != "" {
			name := section
			ingredient.Section = &name
		}
		ingredients = append(ingredients, ingredient)
	}

	return ingredients
}

// ParseLine extracts a single ingredient. It returns false when nothing
// usable is left after removing markers, measurements and descriptors.
func (p *RecipeParser) ParseLine(line string) (models.ParsedIngredient, bool) {
	cleaned := p.stripBullets(normalizeText(line))
	if cleaned == "" {
		return models.ParsedIngredient{}, false
	}

	optional := strings.Contains(strings.ToLower(cleaned), "optional")

	name := p.CleanName(p.stripMeasurements(cleaned))
	if utf8.RuneCountInString(name) < 2 {
		return models.ParsedIngredient{}, false
	}

	return models.ParsedIngredient{
		Original:   line,
		Name:       name,
		Optional:   optional,
		Confidence: AssessConfidence(name),
	}, true
}

// stripMeasurements removes a leading amount and unit (plus any trailing one),
// or failing that an "X of N" lead-in. Otherwise the text is returned as is.
func (p *RecipeParser) stripMeasurements(text string) string {
	if loc := p.leadingMeasurement.FindStringIndex(text); loc != nil {
		rest := strings.TrimSpace(text[loc[1]:])
		return p.trailingMeasurement.ReplaceAllString(rest, "")
	}

	if loc := p.ofQuantity.FindStringIndex(text); loc != nil {
		return strings.TrimSpace(text[loc[1]:])
	}

	return text
}

// StripBullets removes leading checkboxes, bullets, dashes and list numbers
func (p *RecipeParser) StripBullets(line string) string {
	return p.stripBullets(normalizeText(line))
}

func (p *RecipeParser) stripBullets(line string) string {
	for {
		stripped := line
		for _, pattern := range bulletPatterns {
			stripped = pattern.ReplaceAllString(stripped, "")
		}
		stripped = strings.TrimSpace(stripped)
		if stripped == line {
			return stripped
		}
		line = stripped
	}
}

// CleanName reduces ingredient text to a product name suitable for search
func (p *RecipeParser) CleanName(text string) string {
	cleaned := normalizeText(text)

	// Asides: brands, weights, "(optional)", alternatives
	cleaned = p.parenthetical.ReplaceAllString(cleaned, "")
	cleaned = p.bracketed.ReplaceAllString(cleaned, "")

	// Drop clauses that are nothing but preparation or quality words
	if p.clauseSeparator.MatchString(cleaned) {
		var kept []string
		for _, clause := range p.clauseSeparator.Split(cleaned, -1) {
			clause = strings.TrimSpace(clause)
			if hasSubstantiveWord(clause) {
				kept = append(kept, clause)
			}
		}
		cleaned = strings.Join(kept, " ")
	}

	cleaned = p.eachPrefix.ReplaceAllString(cleaned, "")

	if strings.Contains(strings.ToLower(cleaned), " such as ") {
		cleaned = p.suchAs.Split(cleaned, 2)[0]
	}

	if strings.Contains(strings.ToLower(cleaned), " or ") {
		cleaned = p.pickAlternative(p.orSeparator.Split(cleaned, -1))
	}

	// "salt and pepper" -> "salt"
	if strings.Contains(strings.ToLower(cleaned), " and ") {
		parts := p.andSeparator.Split(cleaned, -1)
		if len(strings.Fields(parts[0])) <= 3 {
			cleaned = parts[0]
		}
	}

	for _, pattern := range p.trailingClauses {
		cleaned = pattern.ReplaceAllString(cleaned, "")
	}

	cleaned = p.brands.ReplaceAllString(cleaned, "")
	cleaned = removePrepWords(strings.Fields(cleaned))
	cleaned = removeDescriptors(strings.Fields(cleaned))

	cleaned = strings.Join(strings.Fields(cleaned), " ")
	cleaned = strings.Trim(cleaned, ".,;:-")
	return strings.TrimSpace(cleaned)
}

// pickAlternative chooses between the first and last "or" alternatives: the
// one with fewer descriptor and prep words, then the longer one, then the first.
func (p *RecipeParser) pickAlternative(parts []string) string {
	first, last := parts[0], parts[len(parts)-1]
	firstJunk, lastJunk := junkScore(first), junkScore(last)

	switch {
	case firstJunk < lastJunk:
		return first
	case lastJunk < firstJunk:
		return last
	case len(strings.Fields(first)) >= len(strings.Fields(last)):
		return first
	default:
		return last
	}
}

func junkScore(text string) int {
	score := 0
	for _, word := range strings.Fields(text) {
		w := strings.ToLower(strings.Trim(word, ".,;:-"))
		if sizeWords.has(w) || colorWords.has(w) || qualityWords.has(w) {
			score++
		}
		if prepWords.has(w) {
			score++
		}
	}
	return score
}

func hasSubstantiveWord(clause string) bool {
	for _, word := range strings.Fields(clause) {
		w := strings.ToLower(word)
		if !prepWords.has(w) && !qualityWords.has(w) {
			return true
		}
	}
	return false
}

// removePrepWords drops preparation words. A leading product descriptor
// ("ground", "crushed") is kept. A single word is never filtered.
func removePrepWords(words []string) string {
	if len(words) <= 1 {
		return strings.Join(words, " ")
	}

	kept := make([]string, 0, len(words))
	first := strings.ToLower(strings.Trim(words[0], ".,;:"))
	if productDescriptors.has(first) || !prepWords.has(first) {
		kept = append(kept, words[0])
	}

	for _, word := range words[1:] {
		w := strings.ToLower(strings.Trim(word, ".,;:"))
		if w != "" && !prepWords.has(w) {
			kept = append(kept, word)
		}
	}
	return strings.Join(kept, " ")
}

// removeDescriptors drops size and quality words. Colors stay unless they
// only describe the next word (green bell pepper, yellow squash).
func removeDescriptors(words []string) string {
	kept := make([]string, 0, len(words))
	for i, word := range words {
		w := strings.ToLower(strings.Trim(word, ".,;:"))

		if colorWords.has(w) {
			if i+1 < len(words) {
				next := strings.ToLower(strings.Trim(words[i+1], ".,;:"))
				if colorDescriptorNouns.has(next) {
					continue
				}
			}
			kept = append(kept, word)
			continue
		}

		if !sizeWords.has(w) && !qualityWords.has(w) {
			kept = append(kept, word)
		}
	}
	return strings.Join(kept, " ")
}

// IsSectionHeader reports whether a line names an ingredient group ("For the Sauce:")
func (p *RecipeParser) IsSectionHeader(line string) bool {
	if !strings.HasSuffix(line, ":") {
		return false
	}
	if p.headerMeasurement.MatchString(line) {
		return false
	}
	return utf8.RuneCountInString(line) <= 50
}

// SectionName turns a header line into a display title: "for the sauce:" -> "Sauce"
func (p *RecipeParser) SectionName(line string) string {
	name := strings.TrimSpace(strings.TrimRight(line, ":"))
	name = p.forThePrefix.ReplaceAllString(name, "")
	name = p.forPrefix.ReplaceAllString(name, "")
	// Caser is stateful, so one per call
	return cases.Title(language.English).String(name)
}

// IsGenericHeader reports boilerplate headings like "Ingredients:" or "You'll need"
func (p *RecipeParser) IsGenericHeader(line string) bool {
	key := strings.TrimRight(strings.TrimSpace(strings.ToLower(line)), ":")
	return genericHeaders.has(key)
}

// AssessConfidence grades how likely a cleaned name is a clean product name
func AssessConfidence(name string) models.Confidence {
	length := utf8.RuneCountInString(name)
	if length < 2 {
		return models.ConfidenceLow
	}

	if commonIngredients.has(strings.ToLower(name)) {
		return models.ConfidenceHigh
	}

	words := len(strings.Fields(name))
	switch {
	case words >= 2 && words <= 3:
		return models.ConfidenceHigh
	case words >= 4 || length < 3:
		return models.ConfidenceLow
	default:
		return models.ConfidenceMedium
	}
}

// normalizeText composes Unicode to NFC and folds non-ASCII spaces (NBSP,
// thin space) to plain spaces so patterns built on \s see them.
func normalizeText(s string) string {
	s = norm.NFC.String(s)
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII && unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, s)
}
