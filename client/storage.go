package client

// Storage is the local persistent key-value collaborator backing guest
// carts. Implementations are synchronous and may be capacity-limited, so
// Set can fail.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string)
}

// MemStorage is an in-memory Storage for applications and tests.
type MemStorage struct {
	values map[string]string
}

// NewMemStorage builds an empty in-memory storage.
func NewMemStorage() *MemStorage {
	return &MemStorage{values: map[string]string{}}
}

func (m *MemStorage) Get(key string) (string, bool) {
	value, ok := m.values[key]
	return value, ok
}

func (m *MemStorage) Set(key, value string) error {
	m.values[key] = value
	return nil
}

func (m *MemStorage) Delete(key string) {
	delete(m.values, key)
}
