package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ykvlv/etymology-bot/internal/domain"
)

// MemoryRepo is a process-local Repo with the same merge semantics as SQLiteRepo.
type MemoryRepo struct {
	mu    sync.Mutex
	users map[int64]domain.Profile
	now   func() time.Time
}

func NewMemory() *MemoryRepo {
	return &MemoryRepo{users: make(map[int64]domain.Profile), now: time.Now}
}

func (r *MemoryRepo) Merge(_ context.Context, chatID int64, patch domain.Patch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.users[chatID]
	if !ok {
		p = domain.Profile{ChatID: chatID}
	}
	p.Apply(patch, r.now())
	r.users[chatID] = p
	return nil
}

func (r *MemoryRepo) GetUser(_ context.Context, chatID int64) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.users[chatID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := clone(p)
	return &cp, nil
}

func (r *MemoryRepo) ListEligible(_ context.Context) ([]domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var res []domain.Profile
	for _, p := range r.users {
		if p.Eligible() {
			res = append(res, clone(p))
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ChatID < res[j].ChatID })
	return res, nil
}

func (r *MemoryRepo) Close() error { return nil }

// clone detaches slices and pointers from the stored copy.
func clone(p domain.Profile) domain.Profile {
	if p.Interests != nil {
		p.Interests = append([]string{}, p.Interests...)
	}
	if p.LastSentAt != nil {
		t := *p.LastSentAt
		p.LastSentAt = &t
	}
	return p
}
