package services

import (
	"context"
	"sync"
)

type memoryRegistry struct {
	mu  sync.Mutex
	ids []string
	err error
}

func newMemoryRegistry(ids ...string) *memoryRegistry {
	return &memoryRegistry{ids: append([]string{}, ids...)}
}

func (m *memoryRegistry) AdminIDs(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]string{}, m.ids...), nil
}

func (m *memoryRegistry) MutateAdminIDs(_ context.Context, fn func([]string) ([]string, error)) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	next, err := fn(append([]string{}, m.ids...))
	if err != nil {
		return nil, err
	}
	m.ids = append([]string{}, next...)
	return next, nil
}

func (m *memoryRegistry) snapshot() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.ids...)
}
