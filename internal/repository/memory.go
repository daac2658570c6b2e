package repository

import (
	"context"
	"sync"
)

// MemoryRepository хранит срезы состояния в памяти процесса. Данные теряются при перезапуске.
type MemoryRepository struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryRepository создаёт пустое хранилище в памяти.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{data: make(map[string][]byte)}
}

// Load возвращает значение по ключу.
func (r *MemoryRepository) Load(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	res := make([]byte, len(v))
	copy(res, v)
	return res, nil
}

// Save сохраняет значение по ключу.
func (r *MemoryRepository) Save(_ context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	r.data[key] = v
	return nil
}

// Delete удаляет ключи. Отсутствующие ключи игнорируются.
func (r *MemoryRepository) Delete(_ context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, k := range keys {
		delete(r.data, k)
	}
	return nil
}

// Close ничего не делает.
func (r *MemoryRepository) Close() error {
	return nil
}
