package services

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

// Languages we expect recipes to be written in. Restricting the set keeps
// detection fast and avoids odd guesses on short ingredient lists.
var recipeLanguages = []lingua.Language{
	lingua.English,
	lingua.Spanish,
	lingua.French,
	lingua.German,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Dutch,
	lingua.Korean,
	lingua.Japanese,
	lingua.Chinese,
}

// LanguageDetector reports the language of imported recipe text
type LanguageDetector struct {
	detector lingua.LanguageDetector
}

func NewLanguageDetector() *LanguageDetector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(recipeLanguages...).
		WithMinimumRelativeDistance(0.1).
		Build()
	return &LanguageDetector{detector: detector}
}

var (
	sharedDetector     *LanguageDetector
	sharedDetectorOnce sync.Once
)

// DefaultLanguageDetector returns a process-wide detector, built on first use
func DefaultLanguageDetector() *LanguageDetector {
	sharedDetectorOnce.Do(func() {
		sharedDetector = NewLanguageDetector()
	})
	return sharedDetector
}

// Detect returns the ISO 639-1 code of text, or "" when unsure
func (d *LanguageDetector) Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	lang, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(lang.IsoCode639_1().String())
}
