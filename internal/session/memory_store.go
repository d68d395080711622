package session

import (
	"encoding/json"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MemoryStore is a single-visitor Store kept in memory. It stores the same
// raw strings the cookie store does, so malformed data can be injected in
// tests with SetRaw.
type MemoryStore struct {
	mu      sync.Mutex
	role    string
	user    string
	visitor string
	flashes []Flash
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// SetRaw overwrites the stored strings without validation.
func (m *MemoryStore) SetRaw(role, user string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.role, m.user = role, user
}

// Get implements Store.
func (m *MemoryStore) Get(_ *gin.Context) Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, _ := decode(m.role, m.user)
	return s
}

// Set implements Store.
func (m *MemoryStore) Set(_ *gin.Context, role Role, user User) error {
	if err := validate(role, user); err != nil {
		return err
	}
	encoded, err := json.Marshal(user)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.role, m.user = string(role), string(encoded)
	return nil
}

// Clear implements Store.
func (m *MemoryStore) Clear(_ *gin.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.role, m.user = "", ""
	return nil
}

// ID implements Store.
func (m *MemoryStore) ID(_ *gin.Context) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.visitor == "" {
		m.visitor = uuid.New().String()
	}
	return m.visitor
}

// AddFlash implements Store.
func (m *MemoryStore) AddFlash(_ *gin.Context, f Flash) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flashes = append(m.flashes, f)
}

// Flashes implements Store.
func (m *MemoryStore) Flashes(_ *gin.Context) []Flash {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.flashes
	m.flashes = nil
	return out
}
