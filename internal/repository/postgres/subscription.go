package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/billforge/billforge/internal/domain/subscription"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
)

type subscriptionRepository struct {
	db *sqlx.DB
}

// NewSubscriptionRepository returns a postgres-backed subscription.Repository.
// Plans and redemptions are not hydrated here; the service layer attaches
// them through its own repositories.
func NewSubscriptionRepository(db *sqlx.DB) subscription.Repository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	query := `
		INSERT INTO subscriptions
			(id, owner_id, owner_type, subscription_plan_id, billing_key, credit_card_id,
			 paid_through, expire_on, started_on, last_transaction_at,
			 status, created_at, updated_at, created_by, updated_by)
		VALUES
			(:id, :owner_id, :owner_type, :subscription_plan_id, :billing_key, :credit_card_id,
			 :paid_through, :expire_on, :started_on, :last_transaction_at,
			 :status, :created_at, :updated_at, :created_by, :updated_by)`

	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to insert subscription").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	var s subscription.Subscription
	query := `SELECT * FROM subscriptions WHERE id = $1 AND status != $2`
	if err := r.db.GetContext(ctx, &s, query, id, types.StatusDeleted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("subscription not found").
				WithHintf("No subscription with id %s", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return &s, nil
}

func (r *subscriptionRepository) GetByOwner(ctx context.Context, ownerType, ownerID string) (*subscription.Subscription, error) {
	var s subscription.Subscription
	query := `SELECT * FROM subscriptions WHERE owner_type = $1 AND owner_id = $2 AND status != $3`
	if err := r.db.GetContext(ctx, &s, query, ownerType, ownerID, types.StatusDeleted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("subscription not found").
				WithHintf("No subscription for %s %s", ownerType, ownerID).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return &s, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, s *subscription.Subscription) error {
	query := `
		UPDATE subscriptions SET
			subscription_plan_id = :subscription_plan_id,
			billing_key = :billing_key,
			credit_card_id = :credit_card_id,
			paid_through = :paid_through,
			expire_on = :expire_on,
			started_on = :started_on,
			last_transaction_at = :last_transaction_at,
			status = :status,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id`

	if _, err := r.db.NamedExecContext(ctx, query, s); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscription").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *subscriptionRepository) Delete(ctx context.Context, id string) error {
	query := `UPDATE subscriptions SET status = $1, updated_at = NOW() WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, types.StatusDeleted, id); err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *subscriptionRepository) List(ctx context.Context) ([]*subscription.Subscription, error) {
	var subs []*subscription.Subscription
	query := `SELECT * FROM subscriptions WHERE status != $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &subs, query, types.StatusDeleted); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return subs, nil
}

func (r *subscriptionRepository) ListExpireDue(ctx context.Context, asOf time.Time, excludePlanID string) ([]*subscription.Subscription, error) {
	var subs []*subscription.Subscription
	query := `
		SELECT * FROM subscriptions
		WHERE status != $1
		  AND expire_on IS NOT NULL
		  AND expire_on <= $2
		  AND subscription_plan_id != $3
		ORDER BY expire_on`
	if err := r.db.SelectContext(ctx, &subs, query, types.StatusDeleted, types.ToDate(asOf), excludePlanID); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return subs, nil
}

func (r *subscriptionRepository) ListOverdue(ctx context.Context, asOf time.Time) ([]*subscription.Subscription, error) {
	var subs []*subscription.Subscription
	query := `
		SELECT * FROM subscriptions
		WHERE status != $1
		  AND paid_through IS NOT NULL
		  AND paid_through < $2
		  AND expire_on IS NULL
		ORDER BY paid_through`
	if err := r.db.SelectContext(ctx, &subs, query, types.StatusDeleted, types.ToDate(asOf)); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return subs, nil
}
