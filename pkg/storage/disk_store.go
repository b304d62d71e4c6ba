package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// DiskStore saves uploads to a local directory and serves them back under
// a public URL prefix. It is the default backend for single-node deploys.
type DiskStore struct {
	basePath     string
	publicPrefix string
}

// NewDiskStore creates the base directory if missing. publicPrefix is the
// URL path the HTTP server mounts the directory at, e.g. "/uploads".
func NewDiskStore(basePath, publicPrefix string) (*DiskStore, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("storage base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	if publicPrefix == "" {
		publicPrefix = "/uploads"
	}
	return &DiskStore{basePath: basePath, publicPrefix: strings.TrimSuffix(publicPrefix, "/")}, nil
}

// BasePath returns the directory files are written under, for static serving.
func (d *DiskStore) BasePath() string {
	return d.basePath
}

// Put writes the object under the base directory, creating intermediate
// directories for keys with a path component.
func (d *DiskStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	target, err := d.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, r); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// URL returns the public path the object is served at.
func (d *DiskStore) URL(_ context.Context, key string) (string, error) {
	clean, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return d.publicPrefix + "/" + clean, nil
}

// Delete removes the object, ignoring files that are already gone.
func (d *DiskStore) Delete(_ context.Context, key string) error {
	target, err := d.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

func (d *DiskStore) resolve(key string) (string, error) {
	clean, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(d.basePath, filepath.FromSlash(clean)), nil
}

// cleanKey rejects keys that would escape the base directory.
func cleanKey(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("empty object key")
	}
	return strings.TrimPrefix(clean, "/"), nil
}
