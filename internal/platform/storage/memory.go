package storage

import "sync"

// MemoryBackend is a process-local Backend. Entries do not survive a
// restart.
type MemoryBackend struct {
	mu      sync.RWMutex
	origins map[string]map[string]string
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{origins: make(map[string]map[string]string)}
}

func (b *MemoryBackend) ForOrigin(origin string) KV {
	return &memoryKV{backend: b, origin: origin}
}

type memoryKV struct {
	backend *MemoryBackend
	origin  string
}

func (m *memoryKV) Get(key string) (string, bool, error) {
	m.backend.mu.RLock()
	defer m.backend.mu.RUnlock()

	value, ok := m.backend.origins[m.origin][key]
	return value, ok, nil
}

func (m *memoryKV) Set(key, value string) error {
	m.backend.mu.Lock()
	defer m.backend.mu.Unlock()

	entries, ok := m.backend.origins[m.origin]
	if !ok {
		entries = make(map[string]string)
		m.backend.origins[m.origin] = entries
	}
	entries[key] = value
	return nil
}

func (m *memoryKV) Remove(key string) error {
	m.backend.mu.Lock()
	defer m.backend.mu.Unlock()

	delete(m.backend.origins[m.origin], key)
	return nil
}
