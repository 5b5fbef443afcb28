package mockstore

import (
	"context"
	"sync"
	"time"
)

// KV is the key-value backend the adapter persists documents into.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// MemoryKV is an in-process KV that sleeps for Delay on every call to
// simulate a slow device store. The sleep ignores ctx: once started, a call
// always completes.
type MemoryKV struct {
	Delay time.Duration

	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryKV(delay time.Duration) *MemoryKV {
	return &MemoryKV{Delay: delay, data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.sleep()
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	m.sleep()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.sleep()
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryKV) sleep() {
	if m.Delay > 0 {
		time.Sleep(m.Delay)
	}
}
