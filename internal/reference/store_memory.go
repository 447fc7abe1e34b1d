package reference

import (
	"context"
	"strconv"
	"sync"

	"procsync/pkg/platform/sentinel"
)

type docTypeKey struct {
	tier string
	code int
}

// InMemory is a map-backed resolver for tests and single-binary runs.
// The Add helpers seed it; lookups are read-only after that.
type InMemory struct {
	mu           sync.RWMutex
	classes      map[string]Ref
	localities   map[string]Ref
	judgingBodys map[string]Ref
	subjects     map[string]Ref
	docTypes     map[docTypeKey]Ref
}

func NewInMemory() *InMemory {
	return &InMemory{
		classes:      make(map[string]Ref),
		localities:   make(map[string]Ref),
		judgingBodys: make(map[string]Ref),
		subjects:     make(map[string]Ref),
		docTypes:     make(map[docTypeKey]Ref),
	}
}

func (m *InMemory) AddClass(code, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.classes[code] = Ref{Code: code, Name: name}
}

func (m *InMemory) AddLocality(code, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.localities[code] = Ref{Code: code, Name: name}
}

func (m *InMemory) AddJudgingBody(code, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.judgingBodys[code] = Ref{Code: code, Name: name}
}

func (m *InMemory) AddSubject(code, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subjects[code] = Ref{Code: code, Name: name}
}

func (m *InMemory) AddDocumentType(tier string, code int, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docTypes[docTypeKey{tier: tier, code: code}] = Ref{Code: strconv.Itoa(code), Name: name}
}

func (m *InMemory) Class(_ context.Context, code string) (Ref, error) {
	return m.lookup(m.classes, code)
}

func (m *InMemory) Locality(_ context.Context, code string) (Ref, error) {
	return m.lookup(m.localities, code)
}

func (m *InMemory) JudgingBody(_ context.Context, code string) (Ref, error) {
	return m.lookup(m.judgingBodys, code)
}

func (m *InMemory) Subject(_ context.Context, code string) (Ref, error) {
	return m.lookup(m.subjects, code)
}

func (m *InMemory) DocumentType(_ context.Context, tier string, code int) (Ref, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if ref, ok := m.docTypes[docTypeKey{tier: tier, code: code}]; ok {
		return ref, nil
	}
	return Ref{}, sentinel.ErrNotFound
}

func (m *InMemory) lookup(table map[string]Ref, code string) (Ref, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if ref, ok := table[code]; ok {
		return ref, nil
	}
	return Ref{}, sentinel.ErrNotFound
}
