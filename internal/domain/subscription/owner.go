package subscription

import "context"

// OwnerResolver resolves the opaque owner reference carried by a
// subscription. The billing engine never dispatches on the owner type itself;
// it only asks the resolver to confirm the owner exists at signup.
type OwnerResolver interface {
	ResolveOwner(ctx context.Context, ownerType, ownerID string) error
}

// AcceptAllOwnerResolver trusts every owner reference. Deployments that keep
// their account tables elsewhere plug in their own resolver instead.
type AcceptAllOwnerResolver struct{}

func (AcceptAllOwnerResolver) ResolveOwner(ctx context.Context, ownerType, ownerID string) error {
	return nil
}
