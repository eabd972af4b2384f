// Package memory is an in-process object store for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/MuthuprabhaT/BlendCart/internal/storage"
)

// Object is a stored object.
type Object struct {
	Key         string
	ContentType string
	Format      string
	Data        []byte
	URL         string
}

// Storage implements storage.Storage using an in-memory map.
type Storage struct {
	mu      sync.RWMutex
	objects map[string]*Object
	baseURL string
}

var _ storage.Storage = (*Storage)(nil)

// New creates a new in-memory storage serving URLs under baseURL.
func New(baseURL string) *Storage {
	return &Storage{
		objects: make(map[string]*Object),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Upload reads the payload and keeps it in memory.
func (s *Storage) Upload(_ context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	data, err := io.ReadAll(input.Data)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", input.Key, err)
	}

	url := s.baseURL + "/" + input.Key

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[input.Key] = &Object{
		Key:         input.Key,
		ContentType: input.ContentType,
		Format:      input.Format,
		Data:        data,
		URL:         url,
	}

	return &storage.UploadResult{Key: input.Key, URL: url}, nil
}

// Ping always succeeds.
func (s *Storage) Ping(context.Context) error { return nil }

// Get returns a copy of the stored object.
func (s *Storage) Get(key string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.objects[key]
	if !ok {
		return Object{}, false
	}
	out := *o
	out.Data = append([]byte(nil), o.Data...)
	return out, true
}

// Len returns the number of stored objects.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
