package testutil

import (
	"context"
	"errors"
	"sync"
)

// PictureStore keeps uploaded pictures in memory.
type PictureStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string

	// FailUpload makes every Upload return an error.
	FailUpload bool
}

func NewPictureStore() *PictureStore {
	return &PictureStore{objects: make(map[string][]byte)}
}

func (p *PictureStore) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.FailUpload {
		return "", errors.New("upload failed")
	}
	p.objects[key] = append([]byte(nil), data...)
	return key, nil
}

func (p *PictureStore) Delete(_ context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.objects, key)
	p.deleted = append(p.deleted, key)
	return nil
}

func (p *PictureStore) Has(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.objects[key]
	return ok
}

func (p *PictureStore) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.objects)
}

// Deleted lists removed keys in call order.
func (p *PictureStore) Deleted() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.deleted...)
}
