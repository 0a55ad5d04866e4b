package image

import (
	"encoding/base64"
	"mime"
	"net/http"
	"strings"
	"sync"
)

// Handle owns the bytes of one generated image until Release is called.
type Handle struct {
	mu          sync.RWMutex
	data        []byte
	contentType string
	released    bool
}

// NewHandle sniffs the content type from data, falling back to declared
// when sniffing cannot tell.
func NewHandle(data []byte, declared string) *Handle {
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "" {
			contentType = mt
		}
	}
	return &Handle{data: data, contentType: contentType}
}

func (h *Handle) Bytes() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.data
}

func (h *Handle) Size() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.data)
}

func (h *Handle) ContentType() string {
	return h.contentType
}

// Extension returns a file extension, dot included, for the content type.
func (h *Handle) Extension() string {
	switch h.contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	case "image/svg+xml":
		return ".svg"
	}
	if exts, err := mime.ExtensionsByType(h.contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}

// DataURI renders the image as a data: URI suitable for an <img> src.
// A released handle yields the empty string.
func (h *Handle) DataURI() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.released {
		return ""
	}
	return "data:" + h.contentType + ";base64," + base64.StdEncoding.EncodeToString(h.data)
}

// Release drops the image buffer. Safe to call more than once.
func (h *Handle) Release() {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.data = nil
	h.released = true
}

func (h *Handle) Released() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.released
}
