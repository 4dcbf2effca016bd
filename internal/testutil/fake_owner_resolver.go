package testutil

import (
	"context"
	"sync"

	ierr "github.com/billforge/billforge/internal/errors"
)

// FakeOwnerResolver resolves any owner by default; tests register unknown
// owners to exercise the rejection path.
type FakeOwnerResolver struct {
	mu      sync.Mutex
	unknown map[string]struct{}
}

func NewFakeOwnerResolver() *FakeOwnerResolver {
	return &FakeOwnerResolver{unknown: make(map[string]struct{})}
}

// MarkUnknown makes subsequent resolutions of the given owner fail.
func (r *FakeOwnerResolver) MarkUnknown(ownerType, ownerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unknown[ownerType+"/"+ownerID] = struct{}{}
}

func (r *FakeOwnerResolver) ResolveOwner(ctx context.Context, ownerType, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.unknown[ownerType+"/"+ownerID]; ok {
		return ierr.NewError("owner not found").
			WithHintf("No %s with id %s", ownerType, ownerID).
			Mark(ierr.ErrNotFound)
	}
	return nil
}
