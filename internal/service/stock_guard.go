package service

import (
	"sort"
	"sync"
)

// stockGuard serialises read-check-write cycles per product. Multi-product
// acquisitions lock in sorted id order so two concurrent approvals touching
// overlapping products cannot deadlock.
type stockGuard struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newStockGuard() *stockGuard {
	return &stockGuard{locks: make(map[string]*sync.Mutex)}
}

func (g *stockGuard) acquire(productIDs ...string) func() {
	ids := make([]string, 0, len(productIDs))
	seen := make(map[string]struct{}, len(productIDs))
	for _, id := range productIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	held := make([]*sync.Mutex, 0, len(ids))
	for _, id := range ids {
		m := g.lockFor(id)
		m.Lock()
		held = append(held, m)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

func (g *stockGuard) lockFor(id string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, ok := g.locks[id]
	if !ok {
		m = &sync.Mutex{}
		g.locks[id] = m
	}
	return m
}
