package storage

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/agence/backoffice/internal/application/ticketing"
)

var _ ticketing.ObjectStorage = (*MemoryObjectStorage)(nil)

// MemoryObjectStorage keeps objects in process memory.
// Used when no bucket is configured, and in tests.
type MemoryObjectStorage struct {
	// BaseURL prefixes generated download links
	BaseURL string

	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryObjectStorage creates an empty MemoryObjectStorage
func NewMemoryObjectStorage(baseURL string) *MemoryObjectStorage {
	if baseURL == "" {
		baseURL = "http://localhost/files"
	}
	return &MemoryObjectStorage{
		BaseURL: baseURL,
		objects: make(map[string]memoryObject),
	}
}

// Upload stores a copy of data under key
func (s *MemoryObjectStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = memoryObject{
		data:        append([]byte(nil), data...),
		contentType: contentType,
	}
	return nil
}

// GenerateDownloadURL returns a link carrying the expiry as a query parameter
func (s *MemoryObjectStorage) GenerateDownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, ErrEmptyKey
	}

	expiresAt := time.Now().Add(expiresIn)
	link := s.BaseURL + "/" + url.PathEscape(key) + "?expires=" + url.QueryEscape(expiresAt.UTC().Format(time.RFC3339))
	return link, expiresAt, nil
}

// ObjectExists reports whether key was uploaded
func (s *MemoryObjectStorage) ObjectExists(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

// Get returns the stored bytes and content type of key
func (s *MemoryObjectStorage) Get(key string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, "", false
	}
	return obj.data, obj.contentType, true
}
