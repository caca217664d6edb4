package samplestore

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"sync"

	"github.com/yanqian/cogniwell/internal/domain/detection"
)

// MemoryStorage keeps samples in memory. Useful for tests and local dev.
type MemoryStorage struct {
	mu    sync.RWMutex
	blobs map[string]detection.StoredObject
	data  map[string][]byte
}

// NewMemoryStorage constructs storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		blobs: make(map[string]detection.StoredObject),
		data:  make(map[string][]byte),
	}
}

// Put stores the sample and returns metadata.
func (s *MemoryStorage) Put(_ context.Context, key string, data []byte, mimeType string) (detection.StoredObject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hash := md5.Sum(data)
	obj := detection.StoredObject{
		Key:      key,
		Size:     int64(len(data)),
		MimeType: mimeType,
		ETag:     hex.EncodeToString(hash[:]),
	}
	s.blobs[key] = obj
	s.data[key] = append([]byte(nil), data...)
	return obj, nil
}

// Delete removes the sample.
func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	delete(s.data, key)
	return nil
}

// Bytes returns a copy of a stored sample.
func (s *MemoryStorage) Bytes(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), data...), true
}

var _ detection.ObjectStorage = (*MemoryStorage)(nil)
