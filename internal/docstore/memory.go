package docstore

import (
	"context"
	"encoding/json"
	"sync"
)

// Memory is an in-process Store. It backs tests and local runs without
// Redis.
type Memory struct {
	mu   sync.Mutex
	docs map[string]map[string]json.RawMessage
	subs map[string]map[*Subscription]struct{}
}

func NewMemory() *Memory {
	return &Memory{
		docs: make(map[string]map[string]json.RawMessage),
		subs: make(map[string]map[*Subscription]struct{}),
	}
}

func (m *Memory) Get(ctx context.Context, path string) (Snapshot, error) {
	path, err := cleanPath(path)
	if err != nil {
		return Snapshot{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return newSnapshot(path, m.docs[path]), nil
}

func (m *Memory) Set(ctx context.Context, path string, value any) error {
	parent, key, err := splitPath(path)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.docs[parent] == nil {
		m.docs[parent] = make(map[string]json.RawMessage)
	}
	m.docs[parent][key] = raw
	m.publishLocked(parent)
	return nil
}

func (m *Memory) Delete(ctx context.Context, path string) error {
	parent, key, err := splitPath(path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.docs[parent][key]; !ok {
		return nil
	}
	delete(m.docs[parent], key)
	m.publishLocked(parent)
	return nil
}

func (m *Memory) Subscribe(ctx context.Context, path string) (*Subscription, error) {
	path, err := cleanPath(path)
	if err != nil {
		return nil, err
	}

	var sub *Subscription
	sub = newSubscription(path, func() {
		m.mu.Lock()
		delete(m.subs[path], sub)
		m.mu.Unlock()
	})

	m.mu.Lock()
	if m.subs[path] == nil {
		m.subs[path] = make(map[*Subscription]struct{})
	}
	m.subs[path][sub] = struct{}{}
	sub.deliver(newSnapshot(path, m.docs[path]))
	m.mu.Unlock()

	context.AfterFunc(ctx, sub.Close)
	return sub, nil
}

// Fail terminates every subscription on path with err, simulating a
// listener cancelled by the backend.
func (m *Memory) Fail(path string, err error) {
	m.mu.Lock()
	subs := make([]*Subscription, 0, len(m.subs[path]))
	for s := range m.subs[path] {
		subs = append(subs, s)
	}
	m.mu.Unlock()

	for _, s := range subs {
		s.terminate(err)
	}
}

// Subscribers reports the number of live subscriptions on path.
func (m *Memory) Subscribers(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[path])
}

func (m *Memory) publishLocked(path string) {
	if len(m.subs[path]) == 0 {
		return
	}
	snap := newSnapshot(path, m.docs[path])
	for s := range m.subs[path] {
		s.deliver(snap)
	}
}
