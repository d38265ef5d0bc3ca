package storage

import (
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// DetectImage sniffs the content type of data and returns it with the file
// extension to store it under. Declared client content types are ignored.
func DetectImage(data []byte) (contentType, ext string, err error) {
	if len(data) == 0 {
		return "", "", fmt.Errorf("empty file")
	}
	contentType = mimetype.Detect(data).String()
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return contentType, "", fmt.Errorf("unsupported file type %s", contentType)
	}
	return contentType, ext, nil
}
