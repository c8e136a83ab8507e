package vision

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	_ "image/jpeg"
	_ "image/png"
)

// DecodeBase64Image decodes a base64-encoded image, stripping a data-URL
// prefix ("data:image/jpeg;base64,...") when present, and verifies the bytes
// are a decodable image. It returns the raw bytes and the detected MIME type.
func DecodeBase64Image(encoded string) ([]byte, string, error) {
	if encoded == "" {
		return nil, "", fmt.Errorf("empty image payload")
	}

	if idx := strings.Index(encoded, ","); idx != -1 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[idx+1:]
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		// Webcam captures from browsers occasionally arrive URL-safe encoded.
		data, err = base64.URLEncoding.DecodeString(encoded)
		if err != nil {
			return nil, "", fmt.Errorf("invalid base64 image data: %w", err)
		}
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("undecodable image data: %w", err)
	}

	return data, "image/" + format, nil
}
