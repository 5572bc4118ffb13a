package domain

// ItemSource tags where a FoodItem's nutrient values came from.
type ItemSource string

const (
	// SourceModel marks values estimated by the vision model.
	SourceModel ItemSource = "model"
	// SourceDatabase marks values replaced from the composition database.
	SourceDatabase ItemSource = "database"
	// SourceFallback marks values synthesized when the model output was unusable.
	SourceFallback ItemSource = "fallback"
)

// ImageType represents the accepted upload image types.
type ImageType string

const (
	ImageTypeJPEG ImageType = "jpeg"
	ImageTypePNG  ImageType = "png"
	ImageTypeWebP ImageType = "webp"
)

// AllowedImageTypes maps MIME content types to ImageType.
var AllowedImageTypes = map[string]ImageType{
	"image/jpeg": ImageTypeJPEG,
	"image/png":  ImageTypePNG,
	"image/webp": ImageTypeWebP,
}
