package bot

import (
	"errors"
	"fmt"
)

// DefaultMaxFileSize is the upload ceiling applied when none is configured:
// 17 MiB.
const DefaultMaxFileSize = 17 << 20

// Upload validation errors. Both reject the upload before any external call
// is made.
var (
	ErrUnsupportedType = errors.New("bot: unsupported media type")
	ErrFileTooLarge    = errors.New("bot: file exceeds the size ceiling")
)

// supportedMIMETypes lists the media types the OCR backend accepts.
var supportedMIMETypes = map[string]struct{}{
	"application/pdf": {},
	"image/jpeg":      {},
	"image/png":       {},
	"image/tiff":      {},
	"image/bmp":       {},
	"image/webp":      {},
}

// UploadPolicy validates a declared media type and size before download.
type UploadPolicy struct {
	// MaxFileSize is the upload ceiling in bytes. Zero means
	// [DefaultMaxFileSize].
	MaxFileSize int64
}

// Limit returns the effective upload ceiling in bytes.
func (p UploadPolicy) Limit() int64 {
	if p.MaxFileSize <= 0 {
		return DefaultMaxFileSize
	}
	return p.MaxFileSize
}

// Check validates the declared media type and size. It never inspects file
// content; rejection happens before the file is downloaded.
func (p UploadPolicy) Check(mimeType string, size int64) error {
	if _, ok := supportedMIMETypes[mimeType]; !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedType, mimeType)
	}
	if maxSize := p.Limit(); size > maxSize {
		return fmt.Errorf("%w: %d bytes (ceiling %d)", ErrFileTooLarge, size, maxSize)
	}
	return nil
}
