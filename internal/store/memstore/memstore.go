// Package memstore provides an in-memory activity store. It backs the test
// suite and the "memory" storage backend for throwaway tracking sessions.
package memstore

import (
	"sort"
	"sync"
	"time"

	"github.com/strideapp/stride/internal/models"
	"github.com/strideapp/stride/internal/store"
)

// Memory is an in-memory store.Store. Reads take a shared lock, Transact
// takes the exclusive lock for the whole callback. Mutations inside a
// failed Transact are not rolled back; single-process callers serialize
// through the lifecycle engine, which validates before writing.
type Memory struct {
	mu   sync.RWMutex
	byID map[string]*models.Activity
}

// New creates an empty in-memory store.
func New() *Memory {
	return &Memory{byID: make(map[string]*models.Activity)}
}

func (m *Memory) Insert(a *models.Activity) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insert(a)
}

func (m *Memory) Get(id string) (*models.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.get(id)
}

func (m *Memory) Update(id string, mut store.Mutation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.update(id, mut)
}

func (m *Memory) FindActiveWork() (*models.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findActiveWork()
}

func (m *Memory) FindOpenIntermission(parentID string) (*models.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findOpenIntermission(parentID)
}

func (m *Memory) FindHeldWork(id string) (*models.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findHeldWork(id)
}

func (m *Memory) ListHeldWork() ([]models.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listHeldWork()
}

func (m *Memory) ScanRange(start, end time.Time) ([]models.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scanRange(start, end)
}

// Transact runs fn under the exclusive lock. The view passed to fn uses
// the unlocked inner operations, so fn must not call back into m.
func (m *Memory) Transact(fn func(tx store.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(view{m})
}

func (m *Memory) Close() error { return nil }

// view exposes the unlocked operations to a Transact callback.
type view struct{ m *Memory }

func (v view) Insert(a *models.Activity) (string, error) { return v.m.insert(a) }
func (v view) Get(id string) (*models.Activity, error)   { return v.m.get(id) }
func (v view) Update(id string, mut store.Mutation) error {
	return v.m.update(id, mut)
}
func (v view) FindActiveWork() (*models.Activity, error) { return v.m.findActiveWork() }
func (v view) FindOpenIntermission(parentID string) (*models.Activity, error) {
	return v.m.findOpenIntermission(parentID)
}
func (v view) FindHeldWork(id string) (*models.Activity, error) { return v.m.findHeldWork(id) }
func (v view) ListHeldWork() ([]models.Activity, error)         { return v.m.listHeldWork() }
func (v view) ScanRange(start, end time.Time) ([]models.Activity, error) {
	return v.m.scanRange(start, end)
}
func (v view) Transact(fn func(tx store.Store) error) error { return fn(v) }
func (v view) Close() error                                 { return nil }

// --- unlocked operations ---

func (m *Memory) insert(a *models.Activity) (string, error) {
	cp := *a
	if cp.ID == "" {
		cp.ID = models.NewID()
	}
	m.byID[cp.ID] = &cp
	return cp.ID, nil
}

func (m *Memory) get(id string) (*models.Activity, error) {
	a, ok := m.byID[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *Memory) update(id string, mut store.Mutation) error {
	a, ok := m.byID[id]
	if !ok {
		return store.ErrNotFound
	}
	if mut.Category != nil {
		a.Category = *mut.Category
	}
	if mut.Description != nil {
		a.Description = *mut.Description
	}
	if mut.Tags != nil {
		a.Tags = models.NormalizeTags(*mut.Tags)
	}
	if mut.Begin != nil {
		a.Begin = *mut.Begin
	}
	if mut.End != nil {
		end := *mut.End
		a.End = &end
	}
	if mut.DurationSec != nil {
		d := *mut.DurationSec
		a.DurationSec = &d
	}
	if mut.Status != nil {
		a.Status = *mut.Status
	}
	return nil
}

func (m *Memory) findActiveWork() (*models.Activity, error) {
	for _, a := range m.byID {
		if a.Kind == models.KindWork && a.Status == models.StatusActive {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *Memory) findOpenIntermission(parentID string) (*models.Activity, error) {
	for _, a := range m.byID {
		if a.Kind == models.KindIntermission && a.ParentID == parentID && a.Status == models.StatusActive {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *Memory) findHeldWork(id string) (*models.Activity, error) {
	a, ok := m.byID[id]
	if !ok || a.Kind != models.KindWork || a.Status != models.StatusHeld {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (m *Memory) listHeldWork() ([]models.Activity, error) {
	var held []models.Activity
	for _, a := range m.byID {
		if a.Kind == models.KindWork && a.Status == models.StatusHeld {
			held = append(held, *a)
		}
	}
	sort.Slice(held, func(i, j int) bool {
		if held[i].Begin.Equal(held[j].Begin) {
			return held[i].ID < held[j].ID
		}
		return held[i].Begin.Before(held[j].Begin)
	})
	return held, nil
}

func (m *Memory) scanRange(start, end time.Time) ([]models.Activity, error) {
	var out []models.Activity
	for _, a := range m.byID {
		if !a.Begin.Before(start) && a.Begin.Before(end) {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Begin.Equal(out[j].Begin) {
			return out[i].ID < out[j].ID
		}
		return out[i].Begin.Before(out[j].Begin)
	})
	return out, nil
}
