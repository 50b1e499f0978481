// Package db persists partners and tier-upgrade requests.
package db

import (
	"context"
	"sort"
	"sync"

	"github.com/Sofsavdo/BiznesYordam.uz-sub000/core/workflow"
	"github.com/Sofsavdo/BiznesYordam.uz-sub000/internal/errors"
)

type memTxKey struct{}

// memUndo records the value each key held before a transaction first wrote
// it. A nil entry means the key did not exist.
type memUndo struct {
	partners map[string]*workflow.Partner
	upgrades map[string]*workflow.UpgradeRequest
}

func undoFrom(ctx context.Context) *memUndo {
	u, _ := ctx.Value(memTxKey{}).(*memUndo)
	return u
}

// MemoryStore is an in-process workflow.Store
type MemoryStore struct {
	mu       sync.RWMutex
	txMu     sync.Mutex
	partners map[string]workflow.Partner
	upgrades map[string]workflow.UpgradeRequest
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		partners: make(map[string]workflow.Partner),
		upgrades: make(map[string]workflow.UpgradeRequest),
	}
}

// WithinTx serializes fn against other transactions. If fn fails, only the
// keys fn wrote are restored; writes made outside the transaction stay.
func (s *MemoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if undoFrom(ctx) != nil {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	undo := &memUndo{
		partners: make(map[string]*workflow.Partner),
		upgrades: make(map[string]*workflow.UpgradeRequest),
	}
	if err := fn(context.WithValue(ctx, memTxKey{}, undo)); err != nil {
		s.rollback(undo)
		return err
	}
	return nil
}

func (s *MemoryStore) rollback(undo *memUndo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, prev := range undo.partners {
		if prev == nil {
			delete(s.partners, id)
			continue
		}
		s.partners[id] = *prev
	}
	for id, prev := range undo.upgrades {
		if prev == nil {
			delete(s.upgrades, id)
			continue
		}
		s.upgrades[id] = *prev
	}
}

// notePartner remembers the pre-transaction value of a partner. Callers
// hold s.mu.
func (s *MemoryStore) notePartner(ctx context.Context, id string) {
	undo := undoFrom(ctx)
	if undo == nil {
		return
	}
	if _, seen := undo.partners[id]; seen {
		return
	}
	if p, ok := s.partners[id]; ok {
		undo.partners[id] = &p
		return
	}
	undo.partners[id] = nil
}

// noteUpgrade remembers the pre-transaction value of a request. Callers
// hold s.mu.
func (s *MemoryStore) noteUpgrade(ctx context.Context, id string) {
	undo := undoFrom(ctx)
	if undo == nil {
		return
	}
	if _, seen := undo.upgrades[id]; seen {
		return
	}
	if r, ok := s.upgrades[id]; ok {
		undo.upgrades[id] = &r
		return
	}
	undo.upgrades[id] = nil
}

func (s *MemoryStore) CreatePartner(ctx context.Context, p *workflow.Partner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.partners[p.ID]; ok {
		return errors.Conflict("partner already exists").WithContext("partner_id", p.ID)
	}
	s.notePartner(ctx, p.ID)
	s.partners[p.ID] = *p
	return nil
}

func (s *MemoryStore) GetPartner(ctx context.Context, id string) (*workflow.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.partners[id]
	if !ok {
		return nil, errors.NotFound("partner", id)
	}
	return &p, nil
}

func (s *MemoryStore) UpdatePartner(ctx context.Context, p *workflow.Partner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.partners[p.ID]; !ok {
		return errors.NotFound("partner", p.ID)
	}
	s.notePartner(ctx, p.ID)
	s.partners[p.ID] = *p
	return nil
}

func (s *MemoryStore) ListPartners(ctx context.Context, status workflow.Status) ([]*workflow.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*workflow.Partner, 0, len(s.partners))
	for _, p := range s.partners {
		if status != "" && p.Status != status {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *MemoryStore) CreateUpgrade(ctx context.Context, r *workflow.UpgradeRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.upgrades[r.ID]; ok {
		return errors.Conflict("upgrade request already exists").WithContext("request_id", r.ID)
	}
	s.noteUpgrade(ctx, r.ID)
	s.upgrades[r.ID] = *r
	return nil
}

func (s *MemoryStore) GetUpgrade(ctx context.Context, id string) (*workflow.UpgradeRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.upgrades[id]
	if !ok {
		return nil, errors.NotFound("upgrade request", id)
	}
	return &r, nil
}

func (s *MemoryStore) UpdateUpgrade(ctx context.Context, r *workflow.UpgradeRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.upgrades[r.ID]; !ok {
		return errors.NotFound("upgrade request", r.ID)
	}
	s.noteUpgrade(ctx, r.ID)
	s.upgrades[r.ID] = *r
	return nil
}

func (s *MemoryStore) ListUpgrades(ctx context.Context, filter workflow.UpgradeFilter) ([]*workflow.UpgradeRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*workflow.UpgradeRequest, 0)
	for _, r := range s.upgrades {
		if filter.PartnerID != "" && r.PartnerID != filter.PartnerID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		r := r
		out = append(out, &r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

var _ workflow.Store = (*MemoryStore)(nil)
