//go:build windows

package services

// OCRService is unavailable on Windows builds; run the API in its container
type OCRService struct{}

func NewOCRService(languages ...string) (*OCRService, error) {
	return nil, ErrOCRUnavailable
}

func (s *OCRService) ProcessImage(imageBytes []byte) (*OCRResult, error) {
	return nil, ErrOCRUnavailable
}

func (s *OCRService) Close() error {
	return nil
}
