package services

import (
	"errors"
	"strings"
)

// ErrOCRUnavailable is returned when text recognition is not built in or
// not configured on this host
var ErrOCRUnavailable = errors.New("OCR is not available")

// OCRResult contains the text read from a recipe photo
type OCRResult struct {
	Text  string
	Lines []string
}

// TextRecognizer reads text out of an image
type TextRecognizer interface {
	ProcessImage(imageBytes []byte) (*OCRResult, error)
	Close() error
}

func newOCRResult(text string) *OCRResult {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return &OCRResult{
		Text:  strings.Join(lines, "\n"),
		Lines: lines,
	}
}
