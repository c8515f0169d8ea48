package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	bookingapp "github.com/estatebook/backend/internal/application/booking"
)

var _ bookingapp.DocumentStorage = (*MemoryDocumentStorage)(nil)

// MemoryDocumentStorage keeps objects in memory. It backs the "stub" driver
// for local development and records calls for tests.
type MemoryDocumentStorage struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]StoredObject
	puts    int
	failing error
}

// StoredObject is an object held by MemoryDocumentStorage
type StoredObject struct {
	Data        []byte
	ContentType string
}

// NewMemoryDocumentStorage creates an empty in-memory store
func NewMemoryDocumentStorage(baseURL string) *MemoryDocumentStorage {
	if baseURL == "" {
		baseURL = "https://storage.example.com"
	}
	return &MemoryDocumentStorage{
		baseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]StoredObject),
	}
}

// FailWith makes every subsequent write return err (nil restores normal behavior)
func (s *MemoryDocumentStorage) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = err
}

// Put stores a copy of body under key
func (s *MemoryDocumentStorage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.failing != nil {
		return "", s.failing
	}
	s.objects[key] = StoredObject{Data: bytes.Clone(data), ContentType: contentType}
	return s.baseURL + "/" + key, nil
}

// DownloadURL returns a fake signed URL
func (s *MemoryDocumentStorage) DownloadURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", errors.New("storage key is required")
	}
	expires := time.Now().Add(15 * time.Minute).UTC().Format(time.RFC3339)
	return s.baseURL + "/download/" + key + "?expires=" + url.QueryEscape(expires), nil
}

// Delete removes the object if present
func (s *MemoryDocumentStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// Object returns the stored object for key
func (s *MemoryDocumentStorage) Object(key string) (StoredObject, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	return obj, ok
}

// PutCount reports how many writes were attempted
func (s *MemoryDocumentStorage) PutCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.puts
}

// Len reports how many objects are stored
func (s *MemoryDocumentStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
