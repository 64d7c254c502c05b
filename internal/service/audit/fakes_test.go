package audit

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-policy-engine/internal/domain/audit"
)

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []audit.Entry
	nextID  int64

	insertErr error
	deleteErr error
	countErr  error
	deletes   int
}

func (f *fakeAuditRepo) Insert(ctx context.Context, entry audit.Entry) (audit.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return audit.Entry{}, f.insertErr
	}
	f.nextID++
	entry.ID = f.nextID
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	f.entries = append(f.entries, entry)
	return entry, nil
}

func (f *fakeAuditRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time, limit int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}

	sort.Slice(f.entries, func(i, j int) bool { return f.entries[i].CreatedAt.Before(f.entries[j].CreatedAt) })

	var kept []audit.Entry
	var deleted int64
	for _, e := range f.entries {
		if e.CreatedAt.Before(cutoff) && deleted < int64(limit) {
			deleted++
			continue
		}
		kept = append(kept, e)
	}
	f.entries = kept
	return deleted, nil
}

func (f *fakeAuditRepo) Count(ctx context.Context, since *time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return 0, f.countErr
	}
	var n int64
	for _, e := range f.entries {
		if since == nil || !e.CreatedAt.Before(*since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeAuditRepo) Bounds(ctx context.Context) (*time.Time, *time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var oldest, newest *time.Time
	for i := range f.entries {
		c := f.entries[i].CreatedAt
		if oldest == nil || c.Before(*oldest) {
			oldest = &c
		}
		if newest == nil || c.After(*newest) {
			newest = &c
		}
	}
	return oldest, newest, nil
}

func (f *fakeAuditRepo) seed(createdAt ...time.Time) {
	for _, c := range createdAt {
		f.nextID++
		f.entries = append(f.entries, audit.Entry{ID: f.nextID, Action: "SEED", EntityName: "Test", CreatedAt: c})
	}
}
