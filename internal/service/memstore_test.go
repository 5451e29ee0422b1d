package service_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"cipherdrive/internal/storage"
)

// memStore keeps objects in memory so the suite runs without a MinIO
// server.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{objects: make(map[string][]byte)}
}

func objectKey(bucket, object string) string {
	return bucket + "/" + object
}

func (s *memStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = make(map[string][]byte)
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

func (s *memStore) PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts storage.PutOptions) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectKey(bucket, object)] = data
	return nil
}

func (s *memStore) GetObject(ctx context.Context, bucket, object string) (io.ReadCloser, storage.ObjectInfo, error) {
	s.mu.Lock()
	data, ok := s.objects[objectKey(bucket, object)]
	s.mu.Unlock()
	if !ok {
		return nil, storage.ObjectInfo{}, fmt.Errorf("object %s not found", object)
	}
	info := storage.ObjectInfo{ObjectName: object, Size: int64(len(data))}
	return io.NopCloser(bytes.NewReader(data)), info, nil
}

func (s *memStore) RemoveObject(ctx context.Context, bucket, object string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, objectKey(bucket, object))
	return nil
}

func (s *memStore) PresignedGetObject(ctx context.Context, bucket, object string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("mem://%s/%s", bucket, object), nil
}
