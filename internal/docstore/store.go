// Package docstore is the realtime document store used for the catalog,
// add-on prices, favorites and chat. Documents are addressed by
// slash-separated paths; every write to "parent/key" publishes a full
// replacement snapshot of "parent" to its subscribers.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	ErrInvalidPath = errors.New("docstore: invalid path")
	ErrClosed      = errors.New("docstore: stream closed")
)

// Store is the contract shared by the Redis and in-memory implementations.
type Store interface {
	Get(ctx context.Context, path string) (Snapshot, error)
	Set(ctx context.Context, path string, value any) error
	Delete(ctx context.Context, path string) error
	Subscribe(ctx context.Context, path string) (*Subscription, error)
}

// Child is one keyed document under a path.
type Child struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// Snapshot is the complete content of a path at one point in time,
// children ordered by key.
type Snapshot struct {
	Path     string  `json:"path"`
	Children []Child `json:"children"`
}

func (s Snapshot) Len() int {
	return len(s.Children)
}

// Keys returns child keys in snapshot order.
func (s Snapshot) Keys() []string {
	keys := make([]string, 0, len(s.Children))
	for _, c := range s.Children {
		keys = append(keys, c.Key)
	}
	return keys
}

// Decode unmarshals the child stored under key into v.
func (s Snapshot) Decode(key string, v any) (bool, error) {
	for _, c := range s.Children {
		if c.Key == key {
			return true, json.Unmarshal(c.Value, v)
		}
	}
	return false, nil
}

func newSnapshot(path string, docs map[string]json.RawMessage) Snapshot {
	snap := Snapshot{Path: path, Children: make([]Child, 0, len(docs))}
	for k, v := range docs {
		snap.Children = append(snap.Children, Child{Key: k, Value: v})
	}
	sort.Slice(snap.Children, func(i, j int) bool {
		return snap.Children[i].Key < snap.Children[j].Key
	})
	return snap
}

// Join builds a path from segments.
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// cleanPath trims surrounding slashes and rejects empty segments.
func cleanPath(path string) (string, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return "", ErrInvalidPath
	}
	for _, seg := range strings.Split(path, "/") {
		if strings.TrimSpace(seg) == "" {
			return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
		}
	}
	return path, nil
}

// splitPath separates a document path into its parent collection and key.
func splitPath(path string) (parent, key string, err error) {
	path, err = cleanPath(path)
	if err != nil {
		return "", "", err
	}
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return "", "", fmt.Errorf("%w: %q has no parent", ErrInvalidPath, path)
	}
	return path[:i], path[i+1:], nil
}

// Subscription is a stream of full snapshots for one path. The channel is
// closed when the stream ends; Err reports why (nil after Close).
type Subscription struct {
	Path string

	mu      sync.Mutex
	ch      chan Snapshot
	closed  bool
	err     error
	release func()
}

func newSubscription(path string, release func()) *Subscription {
	return &Subscription{
		Path:    path,
		ch:      make(chan Snapshot, 1),
		release: release,
	}
}

// C returns the snapshot channel.
func (s *Subscription) C() <-chan Snapshot {
	return s.ch
}

// Err returns the cause of an abnormal termination.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close unsubscribes and releases the underlying listener.
func (s *Subscription) Close() {
	s.terminate(nil)
}

// deliver replaces any pending snapshot with snap.
func (s *Subscription) deliver(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	select {
	case <-s.ch:
	default:
	}
	s.ch <- snap
}

func (s *Subscription) terminate(err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.err = err
	close(s.ch)
	release := s.release
	s.mu.Unlock()

	if release != nil {
		release()
	}
}
