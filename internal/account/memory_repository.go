package account

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu    sync.RWMutex
	byBIC map[string]Account
}

// NewMemoryRepository constructs an in-memory repository used in tests and
// development mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{byBIC: make(map[string]Account)}
}

func (r *memoryRepository) Create(_ context.Context, acc Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byBIC[acc.BIC]; exists {
		return ErrExists
	}
	r.byBIC[acc.BIC] = acc
	return nil
}

func (r *memoryRepository) FindByBIC(_ context.Context, bic string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acc, ok := r.byBIC[bic]
	if !ok {
		return Account{}, ErrNotFound
	}
	return acc, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, acc := range r.byBIC {
		if acc.ID == id {
			return acc, nil
		}
	}
	return Account{}, ErrNotFound
}

func (r *memoryRepository) Save(_ context.Context, acc Account) (Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byBIC[acc.BIC] = acc
	return acc, nil
}
