package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/billforge/billforge/internal/domain/card"
	"github.com/billforge/billforge/internal/gateway"
)

// GatewayCall records one call made against the fake gateway.
type GatewayCall struct {
	Op         string // "store", "update" or "cancel"
	BillingKey string
	Card       *card.CreditCard
}

// FakeGateway is a scriptable in-memory payment gateway. By default every
// operation succeeds and Store hands out sequential billing keys; tests can
// script declines or transport errors per operation.
type FakeGateway struct {
	mu    sync.Mutex
	calls []GatewayCall
	seq   int

	// Scripted outcomes. A nil response with a nil error means the default
	// success behavior.
	StoreResponse  *gateway.Response
	UpdateResponse *gateway.Response
	CancelResponse *gateway.Response
	StoreErr       error
	UpdateErr      error
	CancelErr      error
}

func NewFakeGateway() *FakeGateway {
	return &FakeGateway{}
}

func (g *FakeGateway) Store(ctx context.Context, c *card.CreditCard) (*gateway.Response, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, GatewayCall{Op: "store", Card: c})
	if g.StoreErr != nil {
		return nil, g.StoreErr
	}
	if g.StoreResponse != nil {
		return g.StoreResponse, nil
	}
	g.seq++
	return &gateway.Response{Success: true, BillingKey: fmt.Sprintf("bk_%06d", g.seq)}, nil
}

func (g *FakeGateway) Update(ctx context.Context, billingKey string, c *card.CreditCard) (*gateway.Response, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, GatewayCall{Op: "update", BillingKey: billingKey, Card: c})
	if g.UpdateErr != nil {
		return nil, g.UpdateErr
	}
	if g.UpdateResponse != nil {
		return g.UpdateResponse, nil
	}
	return &gateway.Response{Success: true, BillingKey: billingKey}, nil
}

func (g *FakeGateway) Cancel(ctx context.Context, billingKey string) (*gateway.Response, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls = append(g.calls, GatewayCall{Op: "cancel", BillingKey: billingKey})
	if g.CancelErr != nil {
		return nil, g.CancelErr
	}
	if g.CancelResponse != nil {
		return g.CancelResponse, nil
	}
	return &gateway.Response{Success: true}, nil
}

// Calls returns a copy of all recorded calls.
func (g *FakeGateway) Calls() []GatewayCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]GatewayCall, len(g.calls))
	copy(out, g.calls)
	return out
}

// CallCount returns how many times the given operation was invoked.
func (g *FakeGateway) CallCount(op string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	count := 0
	for _, c := range g.calls {
		if c.Op == op {
			count++
		}
	}
	return count
}

// Reset clears recorded calls and scripted outcomes.
func (g *FakeGateway) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = nil
	g.seq = 0
	g.StoreResponse, g.UpdateResponse, g.CancelResponse = nil, nil, nil
	g.StoreErr, g.UpdateErr, g.CancelErr = nil, nil, nil
}
