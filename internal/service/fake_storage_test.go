package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"alcyxob/coaching-app/internal/storage"
)

// fakeStorage keeps object sizes in memory and hands out predictable URLs.
type fakeStorage struct {
	mu      sync.Mutex
	objects map[string]int64
	deleted []string
	failURL bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string]int64)}
}

func (s *fakeStorage) put(key string, size int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = size
}

func (s *fakeStorage) GeneratePresignedUploadURL(_ context.Context, objectKey, _ string, _ time.Duration) (string, error) {
	if s.failURL {
		return "", errors.New("presign failed")
	}
	return "https://storage.test/put/" + objectKey, nil
}

func (s *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, _ time.Duration) (string, error) {
	if s.failURL {
		return "", errors.New("presign failed")
	}
	return "https://storage.test/get/" + objectKey, nil
}

func (s *fakeStorage) ObjectSize(_ context.Context, objectKey string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	size, ok := s.objects[objectKey]
	if !ok {
		return 0, storage.ErrObjectNotFound
	}
	return size, nil
}

func (s *fakeStorage) DeleteObject(_ context.Context, objectKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, objectKey)
	s.deleted = append(s.deleted, objectKey)
	return nil
}
