package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hintstechnology/bandarmolony-sub008/internal/contracts"
	"github.com/hintstechnology/bandarmolony-sub008/pkg/config"
	"github.com/hintstechnology/bandarmolony-sub008/pkg/logger"
)

const listPageSize = 1000

// SupabaseClient talks to the Supabase Storage HTTP API. It is a thin
// consumed collaborator: no retry, no backoff; a failed call surfaces as
// *contracts.StorageIOError and absent objects as
// *contracts.SubjectNotFoundError.
type SupabaseClient struct {
	baseURL    string
	bucket     string
	apiKey     string
	httpClient *http.Client
	logger     *logger.Logger
}

// NewSupabaseClient creates a storage client from config
func NewSupabaseClient(cfg *config.Config, log *logger.Logger) *SupabaseClient {
	return &SupabaseClient{
		baseURL: strings.TrimRight(cfg.Storage.BaseURL, "/"),
		bucket:  cfg.Storage.Bucket,
		apiKey:  cfg.Storage.APIKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: log,
	}
}

// objectURL builds the object endpoint for a path
func (c *SupabaseClient) objectURL(path string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", c.baseURL, c.bucket, escapePath(path))
}

// Exists reports whether an object exists
func (c *SupabaseClient) Exists(ctx context.Context, path string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.objectURL(path), nil)
	if err != nil {
		return false, &contracts.StorageIOError{Op: "exists", Path: path, Err: err}
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, &contracts.StorageIOError{Op: "exists", Path: path, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return true, nil
	case resp.StatusCode == http.StatusNotFound:
		return false, nil
	default:
		return false, &contracts.StorageIOError{Op: "exists", Path: path, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
}

// DownloadText returns an object's body as text
func (c *SupabaseClient) DownloadText(ctx context.Context, path string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.objectURL(path), nil)
	if err != nil {
		return "", &contracts.StorageIOError{Op: "download", Path: path, Err: err}
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &contracts.StorageIOError{Op: "download", Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", &contracts.SubjectNotFoundError{Subject: path, Path: path}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &contracts.StorageIOError{Op: "download", Path: path, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &contracts.StorageIOError{Op: "download", Path: path, Err: err}
	}
	return string(body), nil
}

// UploadText writes an object, overwriting any existing one
func (c *SupabaseClient) UploadText(ctx context.Context, path, content, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.objectURL(path), strings.NewReader(content))
	if err != nil {
		return &contracts.StorageIOError{Op: "upload", Path: path, Err: err}
	}
	c.authorize(req)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &contracts.StorageIOError{Op: "upload", Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &contracts.StorageIOError{Op: "upload", Path: path, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	return nil
}

// listRequest is the Supabase Storage list payload
type listRequest struct {
	Prefix string `json:"prefix"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

// listEntry is one object in a list response
type listEntry struct {
	Name string `json:"name"`
}

// ListPaths returns all object paths under the given prefix
func (c *SupabaseClient) ListPaths(ctx context.Context, prefix string) ([]string, error) {
	folder := strings.TrimRight(prefix, "/")
	listURL := fmt.Sprintf("%s/storage/v1/object/list/%s", c.baseURL, c.bucket)

	var paths []string
	for offset := 0; ; offset += listPageSize {
		payload, err := json.Marshal(listRequest{Prefix: folder, Limit: listPageSize, Offset: offset})
		if err != nil {
			return nil, &contracts.StorageIOError{Op: "list", Path: prefix, Err: err}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, listURL, bytes.NewReader(payload))
		if err != nil {
			return nil, &contracts.StorageIOError{Op: "list", Path: prefix, Err: err}
		}
		c.authorize(req)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, &contracts.StorageIOError{Op: "list", Path: prefix, Err: err}
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, &contracts.StorageIOError{Op: "list", Path: prefix, Err: err}
		}
		if resp.StatusCode != http.StatusOK {
			return nil, &contracts.StorageIOError{Op: "list", Path: prefix, Err: fmt.Errorf("status %d", resp.StatusCode)}
		}

		var entries []listEntry
		if err := json.Unmarshal(body, &entries); err != nil {
			return nil, &contracts.StorageIOError{Op: "list", Path: prefix, Err: err}
		}

		for _, e := range entries {
			if e.Name == "" {
				continue
			}
			if folder == "" {
				paths = append(paths, e.Name)
			} else {
				paths = append(paths, folder+"/"+e.Name)
			}
		}

		if len(entries) < listPageSize {
			break
		}
	}

	return paths, nil
}

func (c *SupabaseClient) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("apikey", c.apiKey)
	}
}

// escapePath escapes each path segment, keeping the separators
func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}
