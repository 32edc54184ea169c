//go:build !windows && cgo

package services

import (
	"fmt"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// OCRService reads recipe cards and cookbook pages with Tesseract
type OCRService struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewOCRService creates a Tesseract client for the given languages
// (Tesseract codes such as "eng", "spa")
func NewOCRService(languages ...string) (*OCRService, error) {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}

	client := gosseract.NewClient()

	if err := client.SetLanguage(languages...); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: failed to set OCR language: %v", ErrOCRUnavailable, err)
	}

	// Recipe cards are mostly a single column of short lines
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}

	return &OCRService{client: client}, nil
}

// ProcessImage extracts text from an encoded image
func (s *OCRService) ProcessImage(imageBytes []byte) (*OCRResult, error) {
	if len(imageBytes) == 0 {
		return nil, fmt.Errorf("empty image")
	}

	// the underlying client holds one image at a time
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.client.SetImageFromBytes(imageBytes); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := s.client.Text()
	if err != nil {
		return nil, fmt.Errorf("failed to extract text: %w", err)
	}

	return newOCRResult(text), nil
}

// Close releases OCR resources
func (s *OCRService) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}
