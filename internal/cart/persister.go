package cart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// MemoryPersister keeps serialized carts in a map. Used by tests and by
// callers that want an ephemeral cart.
type MemoryPersister struct {
	mu      sync.Mutex
	records map[string][]byte
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{records: make(map[string][]byte)}
}

func (p *MemoryPersister) Save(key string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	p.records[key] = stored
	return nil
}

func (p *MemoryPersister) Load(key string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.records[key], nil
}

// FilePersister stores each key as a JSON file in a directory, the durable
// equivalent of browser local storage.
type FilePersister struct {
	dir string
}

func NewFilePersister(dir string) (*FilePersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cart directory: %w", err)
	}
	return &FilePersister{dir: dir}, nil
}

func (p *FilePersister) Save(key string, data []byte) error {
	return os.WriteFile(filepath.Join(p.dir, key+".json"), data, 0o644)
}

func (p *FilePersister) Load(key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(p.dir, key+".json"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return data, err
}
