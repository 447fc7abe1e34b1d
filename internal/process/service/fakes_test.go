package service

import (
	"context"

	"procsync/internal/eproc"
	"procsync/pkg/platform/sentinel"
)

// fakeRegistry is a canned eproc.Client for service tests.
type fakeRegistry struct {
	changed    []string
	changedErr error
	lastQuery  eproc.ChangedQuery

	processes map[string]*eproc.RawProcess
	fetchErr  error
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{processes: make(map[string]*eproc.RawProcess)}
}

func (f *fakeRegistry) ListChanged(_ context.Context, q eproc.ChangedQuery) ([]string, error) {
	f.lastQuery = q
	if f.changedErr != nil {
		return nil, f.changedErr
	}
	return f.changed, nil
}

func (f *fakeRegistry) FetchProcess(_ context.Context, number string) (*eproc.RawProcess, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	raw, ok := f.processes[number]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return raw, nil
}

// fakeDispatcher records dispatched refresh numbers in order.
type fakeDispatcher struct {
	refreshes []string
	err       error
}

func (f *fakeDispatcher) DispatchRefresh(_ context.Context, number string) error {
	if f.err != nil {
		return f.err
	}
	f.refreshes = append(f.refreshes, number)
	return nil
}
