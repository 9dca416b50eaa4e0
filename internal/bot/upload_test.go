package bot

import (
	"errors"
	"testing"
)

func TestUploadPolicy_AcceptsSupportedTypes(t *testing.T) {
	t.Parallel()
	p := UploadPolicy{}
	for _, mime := range []string{
		"application/pdf", "image/jpeg", "image/png", "image/tiff", "image/bmp", "image/webp",
	} {
		if err := p.Check(mime, 1024); err != nil {
			t.Errorf("Check(%q) = %v, want nil", mime, err)
		}
	}
}

func TestUploadPolicy_RejectsUnsupportedTypes(t *testing.T) {
	t.Parallel()
	p := UploadPolicy{}
	for _, mime := range []string{
		"image/gif", "application/zip", "text/plain", "video/mp4", "",
	} {
		err := p.Check(mime, 1024)
		if !errors.Is(err, ErrUnsupportedType) {
			t.Errorf("Check(%q) = %v, want ErrUnsupportedType", mime, err)
		}
	}
}

func TestUploadPolicy_SizeCeiling(t *testing.T) {
	t.Parallel()
	p := UploadPolicy{}

	if err := p.Check("application/pdf", DefaultMaxFileSize); err != nil {
		t.Errorf("exactly at the ceiling should pass, got %v", err)
	}
	err := p.Check("application/pdf", DefaultMaxFileSize+1)
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("over the ceiling: got %v, want ErrFileTooLarge", err)
	}
}

func TestUploadPolicy_CustomCeiling(t *testing.T) {
	t.Parallel()
	p := UploadPolicy{MaxFileSize: 100}

	if err := p.Check("image/png", 100); err != nil {
		t.Errorf("at custom ceiling: %v", err)
	}
	if err := p.Check("image/png", 101); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("over custom ceiling: got %v, want ErrFileTooLarge", err)
	}
}
