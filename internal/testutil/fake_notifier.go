package testutil

import (
	"context"
	"sync"

	"github.com/billforge/billforge/internal/domain/subscription"
)

// FakeNotifier counts deliveries per notification kind and records the
// subscription ids they targeted. Tests can script a failure for any kind.
type FakeNotifier struct {
	mu sync.Mutex

	Invoices           []string
	GraceWarnings      []string
	ExpirationNotices  []string
	InvoiceErr         error
	GraceWarningErr    error
	ExpirationNoticeErr error
}

func NewFakeNotifier() *FakeNotifier {
	return &FakeNotifier{}
}

func (n *FakeNotifier) SendInvoice(ctx context.Context, sub *subscription.Subscription) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.InvoiceErr != nil {
		return n.InvoiceErr
	}
	n.Invoices = append(n.Invoices, sub.ID)
	return nil
}

func (n *FakeNotifier) SendGraceWarning(ctx context.Context, sub *subscription.Subscription) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.GraceWarningErr != nil {
		return n.GraceWarningErr
	}
	n.GraceWarnings = append(n.GraceWarnings, sub.ID)
	return nil
}

func (n *FakeNotifier) SendExpirationNotice(ctx context.Context, sub *subscription.Subscription) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.ExpirationNoticeErr != nil {
		return n.ExpirationNoticeErr
	}
	n.ExpirationNotices = append(n.ExpirationNotices, sub.ID)
	return nil
}

// Reset clears recorded deliveries and scripted failures.
func (n *FakeNotifier) Reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Invoices, n.GraceWarnings, n.ExpirationNotices = nil, nil, nil
	n.InvoiceErr, n.GraceWarningErr, n.ExpirationNoticeErr = nil, nil, nil
}
