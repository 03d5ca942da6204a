package claims

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used by tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	claims  map[string]*Claim
	byNum   map[string]string
	denials map[string][]*Denial
	issues  map[string][]*Issue
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore returns an empty in-memory claim store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		claims:  make(map[string]*Claim),
		byNum:   make(map[string]string),
		denials: make(map[string][]*Denial),
		issues:  make(map[string][]*Issue),
	}
}

func (m *MemoryStore) insertLocked(rec NewClaim) error {
	if _, ok := m.byNum[rec.Claim.ClaimNumber]; ok {
		return ErrDuplicateClaim
	}
	cp := *rec.Claim
	m.claims[cp.ID] = &cp
	m.byNum[cp.ClaimNumber] = cp.ID
	for _, iss := range rec.Issues {
		issCp := *iss
		m.issues[cp.ID] = append(m.issues[cp.ID], &issCp)
	}
	return nil
}

func (m *MemoryStore) CreateClaim(_ context.Context, rec NewClaim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertLocked(rec)
}

func (m *MemoryStore) CreateClaims(_ context.Context, recs []NewClaim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	// All-or-nothing: reject the batch before touching state.
	for _, rec := range recs {
		if _, ok := m.byNum[rec.Claim.ClaimNumber]; ok {
			return ErrDuplicateClaim
		}
	}
	for _, rec := range recs {
		if err := m.insertLocked(rec); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryStore) GetClaim(_ context.Context, id string) (*Claim, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.claims[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *MemoryStore) ListClaims(_ context.Context, ownerID string) ([]*Claim, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*Claim
	for _, c := range m.claims {
		if ownerID != "" && c.OwnerID != ownerID {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *MemoryStore) ClaimNumberExists(_ context.Context, claimNumber string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byNum[claimNumber]
	return ok, nil
}

func (m *MemoryStore) CreateDenial(_ context.Context, d *Denial) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	claim, ok := m.claims[d.ClaimID]
	if !ok {
		return ErrNotFound
	}
	cp := *d
	m.denials[d.ClaimID] = append(m.denials[d.ClaimID], &cp)
	claim.Status = StatusDenied
	claim.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryStore) ListDenials(_ context.Context, claimID string) ([]*Denial, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Denial, 0, len(m.denials[claimID]))
	for _, d := range m.denials[claimID] {
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MemoryStore) ListIssues(_ context.Context, claimID string) ([]*Issue, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Issue, 0, len(m.issues[claimID]))
	for _, iss := range m.issues[claimID] {
		cp := *iss
		out = append(out, &cp)
	}
	return out, nil
}
