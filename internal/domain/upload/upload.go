package upload

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/kailas-cloud/dinefind/internal/domain"
)

// DefaultMaxBytes caps image uploads when no limit is configured.
const DefaultMaxBytes = 10 << 20

// allowed maps accepted content types to their file extensions.
var allowed = map[string][]string{
	"image/jpeg": {".jpeg", ".jpg"},
	"image/png":  {".png"},
}

// Image is a photo submitted for image search.
type Image struct {
	filename    string
	contentType string
	data        []byte
}

// New validates and creates an Image. The content type is sniffed from
// the data; the declared type is ignored. Only JPEG and PNG are accepted.
func New(filename string, data []byte, maxBytes int) (Image, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if len(data) == 0 {
		return Image{}, fmt.Errorf("%w: empty file", domain.ErrInvalidImage)
	}
	if len(data) > maxBytes {
		return Image{}, fmt.Errorf("%w: %d bytes exceeds limit of %d", domain.ErrInvalidImage, len(data), maxBytes)
	}

	ct := http.DetectContentType(data)
	exts, ok := allowed[ct]
	if !ok {
		return Image{}, fmt.Errorf("%w: unsupported content type %q", domain.ErrInvalidImage, ct)
	}

	filename = filepath.Base(filename)
	if filename == "." || filename == string(filepath.Separator) || filename == "" {
		filename = "upload" + exts[0]
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !contains(exts, ext) {
		filename = strings.TrimSuffix(filename, filepath.Ext(filename)) + exts[0]
	}

	return Image{filename: filename, contentType: ct, data: data}, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Filename returns the sanitized file name.
func (i Image) Filename() string { return i.filename }

// ContentType returns the sniffed MIME type.
func (i Image) ContentType() string { return i.contentType }

// Data returns the raw image bytes.
func (i Image) Data() []byte { return i.data }

// Size returns the image size in bytes.
func (i Image) Size() int { return len(i.data) }
