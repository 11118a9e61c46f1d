package model

import (
	"strings"
	"sync"
)

// ImageRef is a resolved reference to image content held by the studio. A nil
// *ImageRef means the image is absent.
type ImageRef struct {
	ID  ImageID `json:"id"`
	URL string  `json:"url"`
}

// FileUpload describes one file offered to the dataset. Content is held by
// the upload session; the core only needs the name and declared content type.
type FileUpload struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
}

// IsImageContentType reports whether the declared content type is image-like.
// Matches the upload filter of the studio frontend, which accepts `image/*`.
func IsImageContentType(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

// PreviewHandle is a locally derived preview of an uploaded training image.
// It is released when the image leaves the dataset.
type PreviewHandle struct {
	mu       sync.Mutex
	url      string
	released bool
}

// NewPreviewHandle derives a preview handle for the given image.
func NewPreviewHandle(id ImageID) *PreviewHandle {
	return &PreviewHandle{url: "preview://" + string(id)}
}

// URL returns the preview location, or "" once released.
func (p *PreviewHandle) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.released {
		return ""
	}
	return p.url
}

// Release frees the preview. Releasing twice is a no-op.
func (p *PreviewHandle) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released = true
}

// Released reports whether the preview has been freed.
func (p *PreviewHandle) Released() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.released
}

// TrainingImage is one image in the studio's training dataset.
type TrainingImage struct {
	ID          ImageID        `json:"id"`
	Name        string         `json:"name"`
	ContentType string         `json:"content_type"`
	Preview     *PreviewHandle `json:"-"`
}
