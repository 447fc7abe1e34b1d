package store

import (
	"context"
	"sync"

	"procsync/internal/process/models"
	"procsync/pkg/platform/sentinel"
)

// MemoryProcesses is a map-backed ProcessStore for tests and single-binary
// runs.
type MemoryProcesses struct {
	mu        sync.RWMutex
	processes map[string]models.Process
	order     []string
}

func NewMemoryProcesses() *MemoryProcesses {
	return &MemoryProcesses{processes: make(map[string]models.Process)}
}

func (m *MemoryProcesses) Create(_ context.Context, p *models.Process) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.processes[p.Number]; ok {
		return sentinel.ErrConflict
	}
	m.processes[p.Number] = *p
	m.order = append(m.order, p.Number)
	return nil
}

func (m *MemoryProcesses) Find(_ context.Context, number string) (*models.Process, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.processes[number]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}

func (m *MemoryProcesses) Save(_ context.Context, p *models.Process) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.processes[p.Number]; !ok {
		return sentinel.ErrNotFound
	}
	m.processes[p.Number] = *p
	return nil
}

func (m *MemoryProcesses) SetUpdating(_ context.Context, number string, updating bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.processes[number]
	if !ok {
		return sentinel.ErrNotFound
	}
	p.Updating = updating
	m.processes[number] = p
	return nil
}

func (m *MemoryProcesses) ListStale(_ context.Context, limit int) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var stale []string
	for _, number := range m.order {
		if m.processes[number].Fresh {
			continue
		}
		stale = append(stale, number)
		if limit > 0 && len(stale) == limit {
			break
		}
	}
	return stale, nil
}

// MemorySnapshots is a map-backed SnapshotStore.
type MemorySnapshots struct {
	mu        sync.RWMutex
	snapshots map[string]models.RawSnapshot
}

func NewMemorySnapshots() *MemorySnapshots {
	return &MemorySnapshots{snapshots: make(map[string]models.RawSnapshot)}
}

func (m *MemorySnapshots) Save(_ context.Context, snap *models.RawSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[snap.ProcessNumber] = *snap
	return nil
}

func (m *MemorySnapshots) Find(_ context.Context, number string) (*models.RawSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.snapshots[number]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &snap, nil
}

type eventKey struct {
	number     string
	movementID string
}

// MemoryEvents is a map-backed EventStore preserving append order.
type MemoryEvents struct {
	mu     sync.RWMutex
	index  map[eventKey]struct{}
	events []models.Event
}

func NewMemoryEvents() *MemoryEvents {
	return &MemoryEvents{index: make(map[eventKey]struct{})}
}

func (m *MemoryEvents) Exists(_ context.Context, number, movementID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.index[eventKey{number: number, movementID: movementID}]
	return ok, nil
}

func (m *MemoryEvents) Append(_ context.Context, event *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := eventKey{number: event.ProcessNumber, movementID: event.MovementID}
	if _, ok := m.index[key]; ok {
		return nil
	}
	m.index[key] = struct{}{}
	m.events = append(m.events, *event)
	return nil
}

func (m *MemoryEvents) ListByProcess(_ context.Context, number string) ([]models.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Event
	for _, event := range m.events {
		if event.ProcessNumber == number {
			out = append(out, event)
		}
	}
	return out, nil
}

// MemoryParties is a slice-backed PartyStore preserving insertion order.
type MemoryParties struct {
	mu      sync.RWMutex
	parties []models.Party
}

func NewMemoryParties() *MemoryParties {
	return &MemoryParties{}
}

func (m *MemoryParties) DeleteByProcess(_ context.Context, number string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.parties[:0]
	for _, party := range m.parties {
		if party.ProcessNumber != number {
			kept = append(kept, party)
		}
	}
	m.parties = kept
	return nil
}

func (m *MemoryParties) Add(_ context.Context, party *models.Party) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.parties = append(m.parties, *party)
	return nil
}

func (m *MemoryParties) ListByProcess(_ context.Context, number string) ([]models.Party, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Party
	for _, party := range m.parties {
		if party.ProcessNumber == number {
			out = append(out, party)
		}
	}
	return out, nil
}
