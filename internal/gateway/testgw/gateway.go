package testgw

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/billforge/billforge/internal/domain/card"
	"github.com/billforge/billforge/internal/gateway"
	"github.com/billforge/billforge/internal/logger"
)

// Gateway approves everything. It is the default binding for local
// development so the engine can run without gateway credentials.
type Gateway struct {
	seq    atomic.Int64
	logger *logger.Logger
}

func NewGateway(logger *logger.Logger) *Gateway {
	return &Gateway{logger: logger}
}

func (g *Gateway) Store(ctx context.Context, c *card.CreditCard) (*gateway.Response, error) {
	key := fmt.Sprintf("test_%06d", g.seq.Add(1))
	g.logger.Debugw("test gateway stored card", "billing_key", key)
	return &gateway.Response{Success: true, BillingKey: key}, nil
}

func (g *Gateway) Update(ctx context.Context, billingKey string, c *card.CreditCard) (*gateway.Response, error) {
	g.logger.Debugw("test gateway updated card", "billing_key", billingKey)
	return &gateway.Response{Success: true, BillingKey: billingKey}, nil
}

func (g *Gateway) Cancel(ctx context.Context, billingKey string) (*gateway.Response, error) {
	g.logger.Debugw("test gateway canceled agreement", "billing_key", billingKey)
	return &gateway.Response{Success: true}, nil
}
