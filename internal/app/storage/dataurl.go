package storage

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
)

// MaxImageSize is the largest decoded image accepted for upload.
const MaxImageSize = 5 << 20 // 5 MB

var (
	// ErrInvalidImage is returned for data URLs that are not base64 images of an allowed type.
	ErrInvalidImage = errors.New("storage: invalid image data url")

	// ErrImageTooLarge is returned when the decoded image exceeds MaxImageSize.
	ErrImageTooLarge = errors.New("storage: image too large")
)

// AllowedMIMETypes maps accepted image types to the file extension used in object keys.
var AllowedMIMETypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// Image is a decoded data URL.
type Image struct {
	ContentType string
	Ext         string
	Data        []byte
}

// DecodeDataURL parses "data:<mime>;base64,<payload>". The declared type must be
// allowed and must match the sniffed content.
func DecodeDataURL(dataURL string) (Image, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return Image{}, ErrInvalidImage
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return Image{}, ErrInvalidImage
	}

	mimeType, ok := strings.CutSuffix(meta, ";base64")
	if !ok {
		return Image{}, ErrInvalidImage
	}
	mimeType = strings.ToLower(mimeType)

	ext, ok := AllowedMIMETypes[mimeType]
	if !ok {
		return Image{}, ErrInvalidImage
	}

	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageSize+2 {
		return Image{}, ErrImageTooLarge
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return Image{}, ErrInvalidImage
	}

	if len(data) > MaxImageSize {
		return Image{}, ErrImageTooLarge
	}

	if http.DetectContentType(data) != mimeType {
		return Image{}, ErrInvalidImage
	}

	return Image{ContentType: mimeType, Ext: ext, Data: data}, nil
}
