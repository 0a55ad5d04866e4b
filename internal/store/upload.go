package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmorgan81/imagine/internal/log"
	"github.com/samber/do"
)

type UploadParams struct {
	Name        string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

type Uploader interface {
	// Upload stores the object and returns where it landed: a file path or an object key.
	Upload(context.Context, UploadParams) (string, error)
}

// FileUploader writes objects below Dir.
type FileUploader struct {
	Dir string
}

func NewFileUploader(i *do.Injector) (Uploader, error) {
	return &FileUploader{Dir: do.MustInvokeNamed[string](i, "output_dir")}, nil
}

func (u *FileUploader) Upload(ctx context.Context, params UploadParams) (string, error) {
	path := filepath.Join(u.Dir, filepath.FromSlash(strings.TrimPrefix(params.Name, "/")))
	log := log.FromContextOrDiscard(ctx).WithGroup("file")
	log.Info("writing", "file", path, "content-type", params.ContentType)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, params.Data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}
