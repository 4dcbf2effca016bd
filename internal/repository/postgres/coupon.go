package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/billforge/billforge/internal/domain/coupon"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
)

type couponRepository struct {
	db *sqlx.DB
}

// NewCouponRepository returns a postgres-backed coupon.Repository.
func NewCouponRepository(db *sqlx.DB) coupon.Repository {
	return &couponRepository{db: db}
}

func (r *couponRepository) Create(ctx context.Context, c *coupon.Coupon) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO coupons
			(id, description, discount_percentage, redemption_limit, redemption_expiration,
			 duration_in_months, status, created_at, updated_at, created_by, updated_by)
		VALUES
			(:id, :description, :discount_percentage, :redemption_limit, :redemption_expiration,
			 :duration_in_months, :status, :created_at, :updated_at, :created_by, :updated_by)`
	if _, err := tx.NamedExecContext(ctx, query, c); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to insert coupon").
			Mark(ierr.ErrDatabase)
	}

	for _, planID := range c.PlanIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO coupons_subscription_plans (coupon_id, subscription_plan_id) VALUES ($1, $2)`,
			c.ID, planID); err != nil {
			return ierr.WithError(err).
				WithHint("Failed to insert coupon plan restriction").
				Mark(ierr.ErrDatabase)
		}
	}

	if err := tx.Commit(); err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *couponRepository) Get(ctx context.Context, id string) (*coupon.Coupon, error) {
	var c coupon.Coupon
	query := `SELECT * FROM coupons WHERE id = $1 AND status != $2`
	if err := r.db.GetContext(ctx, &c, query, id, types.StatusDeleted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("coupon not found").
				WithHintf("No coupon with id %s", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}

	if err := r.loadPlanIDs(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *couponRepository) List(ctx context.Context) ([]*coupon.Coupon, error) {
	var coupons []*coupon.Coupon
	query := `SELECT * FROM coupons WHERE status != $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &coupons, query, types.StatusDeleted); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}

	for _, c := range coupons {
		if err := r.loadPlanIDs(ctx, c); err != nil {
			return nil, err
		}
	}
	return coupons, nil
}

func (r *couponRepository) Update(ctx context.Context, c *coupon.Coupon) error {
	query := `
		UPDATE coupons SET
			description = :description,
			discount_percentage = :discount_percentage,
			redemption_limit = :redemption_limit,
			redemption_expiration = :redemption_expiration,
			duration_in_months = :duration_in_months,
			status = :status,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id`

	if _, err := r.db.NamedExecContext(ctx, query, c); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update coupon").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *couponRepository) Delete(ctx context.Context, id string) error {
	query := `UPDATE coupons SET status = $1, updated_at = NOW() WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, types.StatusDeleted, id); err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *couponRepository) loadPlanIDs(ctx context.Context, c *coupon.Coupon) error {
	query := `SELECT subscription_plan_id FROM coupons_subscription_plans WHERE coupon_id = $1`
	if err := r.db.SelectContext(ctx, &c.PlanIDs, query, c.ID); err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return nil
}

type redemptionRepository struct {
	db *sqlx.DB
}

// NewRedemptionRepository returns a postgres-backed coupon.RedemptionRepository.
func NewRedemptionRepository(db *sqlx.DB) coupon.RedemptionRepository {
	return &redemptionRepository{db: db}
}

func (r *redemptionRepository) Create(ctx context.Context, redemption *coupon.CouponRedemption) error {
	query := `
		INSERT INTO coupon_redemptions
			(id, subscription_id, coupon_id, redeemed_on, expired_on,
			 status, created_at, updated_at, created_by, updated_by)
		VALUES
			(:id, :subscription_id, :coupon_id, :redeemed_on, :expired_on,
			 :status, :created_at, :updated_at, :created_by, :updated_by)`

	if _, err := r.db.NamedExecContext(ctx, query, redemption); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to insert coupon redemption").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *redemptionRepository) Get(ctx context.Context, id string) (*coupon.CouponRedemption, error) {
	var redemption coupon.CouponRedemption
	query := `SELECT * FROM coupon_redemptions WHERE id = $1 AND status != $2`
	if err := r.db.GetContext(ctx, &redemption, query, id, types.StatusDeleted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("redemption not found").
				WithHintf("No coupon redemption with id %s", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return &redemption, nil
}

func (r *redemptionRepository) ListBySubscription(ctx context.Context, subscriptionID string) ([]*coupon.CouponRedemption, error) {
	var redemptions []*coupon.CouponRedemption
	query := `SELECT * FROM coupon_redemptions WHERE subscription_id = $1 AND status != $2 ORDER BY redeemed_on`
	if err := r.db.SelectContext(ctx, &redemptions, query, subscriptionID, types.StatusDeleted); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}

	couponRepo := &couponRepository{db: r.db}
	for _, redemption := range redemptions {
		c, err := couponRepo.Get(ctx, redemption.CouponID)
		if err != nil {
			return nil, err
		}
		redemption.Coupon = c
	}
	return redemptions, nil
}

func (r *redemptionRepository) CountActiveByCoupon(ctx context.Context, couponID string, on time.Time) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM coupon_redemptions
		WHERE coupon_id = $1
		  AND status != $2
		  AND redeemed_on <= $3
		  AND (expired_on IS NULL OR expired_on >= $3)`
	if err := r.db.GetContext(ctx, &count, query, couponID, types.StatusDeleted, types.ToDate(on)); err != nil {
		return 0, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *redemptionRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM coupon_redemptions WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *redemptionRepository) DeleteBySubscription(ctx context.Context, subscriptionID string) error {
	query := `DELETE FROM coupon_redemptions WHERE subscription_id = $1`
	if _, err := r.db.ExecContext(ctx, query, subscriptionID); err != nil {
		return ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return nil
}
