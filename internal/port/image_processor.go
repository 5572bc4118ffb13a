package port

import "mealscan/internal/domain"

// ImageProcessor validates and downsizes a user upload into a
// bounded-size asset ready for base64 encoding.
type ImageProcessor interface {
	Process(data []byte) (*domain.ProcessedImage, error)
}
