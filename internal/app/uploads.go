package app

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"greenlaunch/pkg/domain"
)

// UploadResource stores a shared program resource. Unlike project documents
// the file is not attached to any record; callers get back metadata with a
// retrievable path.
func (a *App) UploadResource(ctx context.Context, filename string, r io.Reader, size int64) (domain.Document, error) {
	storedName := storedFilename(filename)
	key := path.Join("resources", storedName)
	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename)))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := a.objects.Put(ctx, key, r, size, contentType); err != nil {
		return domain.Document{}, fmt.Errorf("save file: %w", err)
	}
	publicPath, err := a.objects.URL(ctx, key)
	if err != nil {
		return domain.Document{}, fmt.Errorf("resolve file path: %w", err)
	}
	return domain.Document{
		Name:       filepath.Base(filename),
		StoredName: storedName,
		Path:       publicPath,
		UploadedAt: time.Now().UTC(),
	}, nil
}
