// ABOUTME: Mock Backend implementation for testing
// ABOUTME: Wraps an in-memory store and makes Save observable and fallible

package confcache

import (
	"sync"

	"github.com/2389/bondstore/internal/conffile"
)

// MockBackend is a Backend for tests. Data operations delegate to a real
// in-memory store; Save is recorded instead of touching disk and can be
// made to fail on demand.
//
// Like any Backend, the data operations rely on the cache for
// serialization. Only the save bookkeeping carries its own lock, so
// tests may poll SaveCalls while the cache is in use.
type MockBackend struct {
	*conffile.File

	mu        sync.Mutex // guards the save bookkeeping below
	saveErr   error
	saveCalls int
	lastPath  string
}

// NewMockBackend creates an empty MockBackend.
func NewMockBackend() *MockBackend {
	return &MockBackend{File: conffile.New()}
}

// SetSaveErr makes subsequent Save calls return err. Pass nil to restore
// successful saves.
func (m *MockBackend) SetSaveErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

// SaveCalls reports how many times Save has been called.
func (m *MockBackend) SaveCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveCalls
}

// LastSavePath reports the path passed to the most recent Save call.
func (m *MockBackend) LastSavePath() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastPath
}

// Save records the call and returns the injected error, if any. The
// in-memory contents are left untouched either way.
func (m *MockBackend) Save(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	m.lastPath = path
	return m.saveErr
}

var _ Backend = (*MockBackend)(nil)
