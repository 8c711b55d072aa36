package movement

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryJournal struct {
	mu      sync.RWMutex
	nextID  int64
	entries []Movement
}

// NewMemoryJournal creates a concurrency-safe in-memory journal used in tests
// and development mode.
func NewMemoryJournal() Journal {
	return &memoryJournal{nextID: 1}
}

func (j *memoryJournal) Append(_ context.Context, mov Movement) (Movement, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	mov.ID = j.nextID
	j.nextID++
	if mov.Timestamp.IsZero() {
		mov.Timestamp = time.Now().UTC()
	}
	j.entries = append(j.entries, mov)
	return mov, nil
}

func (j *memoryJournal) FindByInstructionID(_ context.Context, instructionID string) ([]Movement, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var out []Movement
	for _, m := range j.entries {
		if m.InstructionID == instructionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (j *memoryJournal) FindByAccountID(_ context.Context, accountID string) ([]Movement, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var out []Movement
	for _, m := range j.entries {
		if m.AccountID == accountID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (j *memoryJournal) ExistsByTypeAndReference(_ context.Context, t Type, referenceID string) (bool, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	for _, m := range j.entries {
		if m.Type == t && m.ReferenceID == referenceID {
			return true, nil
		}
	}
	return false, nil
}

func (j *memoryJournal) FindByTimeRange(_ context.Context, start, end time.Time) ([]Movement, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var out []Movement
	for _, m := range j.entries {
		if !m.Timestamp.Before(start) && !m.Timestamp.After(end) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, k int) bool {
		return out[i].Timestamp.Before(out[k].Timestamp)
	})
	return out, nil
}
