package enums

import "fmt"

// ImageType classifies a profile image slot.
type ImageType string

const (
	ImageTypeProfile ImageType = "profile"
	ImageTypeHouse   ImageType = "house"
)

var validImageTypes = []ImageType{
	ImageTypeProfile,
	ImageTypeHouse,
}

// String returns the literal string for the type.
func (i ImageType) String() string {
	return string(i)
}

// IsValid reports whether the type is known.
func (i ImageType) IsValid() bool {
	for _, candidate := range validImageTypes {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseImageType converts raw input into an ImageType.
func ParseImageType(value string) (ImageType, error) {
	for _, candidate := range validImageTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid image type %q", value)
}
