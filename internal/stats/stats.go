// Package stats counts the requests served by the HTTP server and reports
// the most frequent one. Two backends are provided: an in-memory map and a
// SQLite database for counts that survive restarts.
package stats

import (
	"context"
	"sync"
)

// Task names recorded by the server.
const (
	TaskFibonacci = "fibonacci"
	TaskFizzBuzz  = "fizzbuzz"
)

// Key identifies a request by task and argument.
type Key struct {
	Task string `json:"task"`
	N    uint64 `json:"n"`
}

// Less orders keys by task, then by argument.
func (k Key) Less(o Key) bool {
	if k.Task != o.Task {
		return k.Task < o.Task
	}
	return k.N < o.N
}

// Entry is a key with its hit count. A zero Count means nothing was recorded.
type Entry struct {
	Key
	Count int64 `json:"count"`
}

// Service records hits and returns the most frequent key. Ties are broken
// by the smallest key so the answer does not depend on storage order.
type Service interface {
	Increment(ctx context.Context, key Key) error
	MostFrequent(ctx context.Context) (Entry, error)
}

var (
	_ Service = (*Memory)(nil)
	_ Service = (*DB)(nil)
)

// Memory is a mutex-guarded hit count. The zero value is ready to use.
type Memory struct {
	mu sync.RWMutex
	m  map[Key]int64
}

func (s *Memory) Increment(_ context.Context, key Key) error {
	s.mu.Lock()
	if s.m == nil {
		s.m = make(map[Key]int64)
	}
	s.m[key]++
	s.mu.Unlock()
	return nil
}

func (s *Memory) MostFrequent(_ context.Context) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best Entry
	for k, c := range s.m {
		if c > best.Count || (c == best.Count && k.Less(best.Key)) {
			best = Entry{Key: k, Count: c}
		}
	}
	return best, nil
}
