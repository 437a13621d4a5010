package validation

import (
	"fmt"
	"path/filepath"
	"strings"

	apperrors "quickloan/internal/errors"
)

// UploadRule limits the size and extension of an uploaded file.
type UploadRule struct {
	Field      string
	MaxBytes   int64
	Extensions []string
}

var (
	ProfilePictureRule = UploadRule{
		Field:      "profile_picture",
		MaxBytes:   2 * 1024 * 1024,
		Extensions: []string{".jpg", ".jpeg", ".png", ".gif"},
	}
	DocumentRule = UploadRule{
		Field:      "document",
		MaxBytes:   5 * 1024 * 1024,
		Extensions: []string{".jpg", ".jpeg", ".png", ".pdf"},
	}
)

// Check validates the file name and size against the rule.
func (r UploadRule) Check(filename string, size int64) error {
	v := New()
	ext := strings.ToLower(filepath.Ext(filename))

	allowed := false
	for _, e := range r.Extensions {
		if ext == e {
			allowed = true
			break
		}
	}
	v.Check(allowed, r.Field, fmt.Sprintf("File type not supported. Allowed types: %s", strings.Join(r.Extensions, ", ")))
	v.Check(size > 0, r.Field, "File is empty")
	v.Check(size <= r.MaxBytes, r.Field, fmt.Sprintf("File size must be under %dMB", r.MaxBytes/(1024*1024)))

	if v.Valid() {
		return nil
	}
	return apperrors.ValidationFields(v.Errors)
}
