package storage

import (
	"context"
	"strings"
	"sync"

	"github.com/hintstechnology/bandarmolony-sub008/internal/contracts"
)

// Memory is an in-memory Storage implementation. It doubles as the test
// fake for the pipeline and records per-object access counts so tests can
// assert cache behavior.
type Memory struct {
	mu        sync.RWMutex
	objects   map[string]string
	downloads map[string]int
	uploads   int
	lists     int
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{
		objects:   make(map[string]string),
		downloads: make(map[string]int),
	}
}

// Put seeds an object without counting as an upload
func (m *Memory) Put(path, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = content
}

// Exists reports whether an object exists
func (m *Memory) Exists(_ context.Context, path string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[path]
	return ok, nil
}

// DownloadText returns an object's content
func (m *Memory) DownloadText(_ context.Context, path string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downloads[path]++
	content, ok := m.objects[path]
	if !ok {
		return "", &contracts.SubjectNotFoundError{Subject: path, Path: path}
	}
	return content, nil
}

// UploadText stores an object
func (m *Memory) UploadText(_ context.Context, path, content, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = content
	m.uploads++
	return nil
}

// ListPaths returns every path under prefix
func (m *Memory) ListPaths(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	var paths []string
	for path := range m.objects {
		if strings.HasPrefix(path, prefix) {
			paths = append(paths, path)
		}
	}
	return paths, nil
}

// Downloads returns how many times a path was downloaded
func (m *Memory) Downloads(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.downloads[path]
}

// Uploads returns the total number of uploads
func (m *Memory) Uploads() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.uploads
}

// Lists returns the total number of listing calls
func (m *Memory) Lists() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lists
}
