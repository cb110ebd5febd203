package storage

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hintstechnology/bandarmolony-sub008/internal/contracts"
)

// FSClient serves a local directory tree through the Storage interface.
// Used for development and tests; object paths map to relative file paths.
type FSClient struct {
	root string
}

// NewFSClient creates a filesystem storage client rooted at dir
func NewFSClient(root string) *FSClient {
	return &FSClient{root: root}
}

func (c *FSClient) fullPath(path string) string {
	return filepath.Join(c.root, filepath.FromSlash(path))
}

// Exists reports whether a file exists at path
func (c *FSClient) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(c.fullPath(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, &contracts.StorageIOError{Op: "exists", Path: path, Err: err}
}

// DownloadText reads a file's content
func (c *FSClient) DownloadText(_ context.Context, path string) (string, error) {
	data, err := os.ReadFile(c.fullPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return "", &contracts.SubjectNotFoundError{Subject: path, Path: path}
		}
		return "", &contracts.StorageIOError{Op: "download", Path: path, Err: err}
	}
	return string(data), nil
}

// UploadText writes a file, creating parent directories as needed
func (c *FSClient) UploadText(_ context.Context, path, content, _ string) error {
	full := c.fullPath(path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return &contracts.StorageIOError{Op: "upload", Path: path, Err: err}
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return &contracts.StorageIOError{Op: "upload", Path: path, Err: err}
	}
	return nil
}

// ListPaths walks the tree under prefix and returns slash-separated paths
func (c *FSClient) ListPaths(_ context.Context, prefix string) ([]string, error) {
	dir := c.fullPath(strings.TrimRight(prefix, "/"))

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &contracts.StorageIOError{Op: "list", Path: prefix, Err: err}
	}
	if !info.IsDir() {
		return nil, nil
	}

	var paths []string
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(c.root, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, &contracts.StorageIOError{Op: "list", Path: prefix, Err: err}
	}
	return paths, nil
}
