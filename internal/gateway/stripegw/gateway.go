package stripegw

import (
	"context"

	"github.com/stripe/stripe-go/v82"

	"github.com/billforge/billforge/internal/config"
	"github.com/billforge/billforge/internal/domain/card"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/gateway"
	"github.com/billforge/billforge/internal/logger"
)

// Gateway implements the payment gateway capability on Stripe. The billing
// key is the Stripe customer id; the card lives as the customer's default
// payment method.
type Gateway struct {
	client *stripe.Client
	logger *logger.Logger
}

func NewGateway(cfg *config.Configuration, logger *logger.Logger) (*Gateway, error) {
	if cfg.Gateway.Stripe.SecretKey == "" {
		return nil, ierr.NewError("stripe secret key not configured").
			WithHint("Set gateway.stripe.secret_key to use the Stripe gateway").
			Mark(ierr.ErrValidation)
	}
	return &Gateway{
		client: stripe.NewClient(cfg.Gateway.Stripe.SecretKey, nil),
		logger: logger,
	}, nil
}

func (g *Gateway) Store(ctx context.Context, c *card.CreditCard) (*gateway.Response, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	cust, err := g.client.V1Customers.Create(ctx, &stripe.CustomerCreateParams{
		Description: stripe.String("billforge subscription"),
	})
	if err != nil {
		return declined(err), nil
	}

	pm, err := g.createPaymentMethod(ctx, c)
	if err != nil {
		return declined(err), nil
	}

	if err := g.attachDefault(ctx, cust.ID, pm.ID); err != nil {
		return declined(err), nil
	}

	g.logger.Infow("stored card at stripe", "billing_key", cust.ID)
	return &gateway.Response{Success: true, BillingKey: cust.ID}, nil
}

func (g *Gateway) Update(ctx context.Context, billingKey string, c *card.CreditCard) (*gateway.Response, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	pm, err := g.createPaymentMethod(ctx, c)
	if err != nil {
		return declined(err), nil
	}

	if err := g.attachDefault(ctx, billingKey, pm.ID); err != nil {
		return declined(err), nil
	}

	g.logger.Infow("updated card at stripe", "billing_key", billingKey)
	return &gateway.Response{Success: true, BillingKey: billingKey}, nil
}

func (g *Gateway) Cancel(ctx context.Context, billingKey string) (*gateway.Response, error) {
	if _, err := g.client.V1Customers.Delete(ctx, billingKey, nil); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to cancel the billing agreement").
			Mark(ierr.ErrGateway)
	}

	g.logger.Infow("canceled billing agreement at stripe", "billing_key", billingKey)
	return &gateway.Response{Success: true}, nil
}

func (g *Gateway) createPaymentMethod(ctx context.Context, c *card.CreditCard) (*stripe.PaymentMethod, error) {
	return g.client.V1PaymentMethods.Create(ctx, &stripe.PaymentMethodCreateParams{
		Type: stripe.String(string(stripe.PaymentMethodTypeCard)),
		Card: &stripe.PaymentMethodCreateCardParams{
			Number:   stripe.String(c.Number),
			ExpMonth: stripe.Int64(int64(c.ExpirationMonth)),
			ExpYear:  stripe.Int64(int64(c.ExpirationYear)),
			CVC:      stripe.String(c.CVV),
		},
	})
}

func (g *Gateway) attachDefault(ctx context.Context, customerID, paymentMethodID string) error {
	_, err := g.client.V1PaymentMethods.Attach(ctx, paymentMethodID, &stripe.PaymentMethodAttachParams{
		Customer: stripe.String(customerID),
	})
	if err != nil {
		return err
	}

	_, err = g.client.V1Customers.Update(ctx, customerID, &stripe.CustomerUpdateParams{
		InvoiceSettings: &stripe.CustomerUpdateInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(paymentMethodID),
		},
	})
	return err
}

func declined(err error) *gateway.Response {
	return &gateway.Response{Success: false, Message: err.Error()}
}
