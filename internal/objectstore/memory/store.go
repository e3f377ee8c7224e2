// Package memory keeps attachment objects in process memory for local runs and tests.
package memory

import (
	"context"
	"net/url"
	"strconv"
	"sync"
	"time"
)

type Store struct {
	baseURL string
	now     func() time.Time

	mu      sync.RWMutex
	objects map[string][]byte
}

func NewStore(bucket string) *Store {
	return &Store{
		baseURL: "memory://" + bucket,
		now:     time.Now,
		objects: make(map[string][]byte),
	}
}

func (s *Store) PresignUpload(_ context.Context, key string, ttl time.Duration) (string, error) {
	expiresAt := s.now().Add(ttl).Unix()
	return s.ObjectURL(key) + "?x-upload-expires=" + strconv.FormatInt(expiresAt, 10), nil
}

func (s *Store) ObjectURL(key string) string {
	return s.baseURL + "/" + url.PathEscape(key)
}

// Put stores data under key, standing in for the client upload.
func (s *Store) Put(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[key] = append([]byte(nil), data...)
}

// Get returns the object bytes, or false if the object does not exist.
func (s *Store) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, key)
	return nil
}

func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.objects[key]
	return ok, nil
}
