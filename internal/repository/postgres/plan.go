package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/billforge/billforge/internal/domain/plan"
	ierr "github.com/billforge/billforge/internal/errors"
	"github.com/billforge/billforge/internal/types"
)

type planRepository struct {
	db *sqlx.DB
}

// NewPlanRepository returns a postgres-backed plan.Repository.
func NewPlanRepository(db *sqlx.DB) plan.Repository {
	return &planRepository{db: db}
}

func (r *planRepository) Create(ctx context.Context, p *plan.Plan) error {
	query := `
		INSERT INTO subscription_plans
			(id, key, name, rate_cents, feature_set_id, status, created_at, updated_at, created_by, updated_by)
		VALUES
			(:id, :key, :name, :rate_cents, :feature_set_id, :status, :created_at, :updated_at, :created_by, :updated_by)`

	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to insert plan").
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *planRepository) Get(ctx context.Context, id string) (*plan.Plan, error) {
	var p plan.Plan
	query := `SELECT * FROM subscription_plans WHERE id = $1 AND status != $2`
	if err := r.db.GetContext(ctx, &p, query, id, types.StatusDeleted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("plan not found").
				WithHintf("No plan with id %s", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *planRepository) GetByKey(ctx context.Context, key string) (*plan.Plan, error) {
	var p plan.Plan
	query := `SELECT * FROM subscription_plans WHERE key = $1 AND status != $2`
	if err := r.db.GetContext(ctx, &p, query, key, types.StatusDeleted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("plan not found").
				WithHintf("No plan with key %s", key).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *planRepository) GetFree(ctx context.Context) (*plan.Plan, error) {
	var p plan.Plan
	query := `SELECT * FROM subscription_plans WHERE rate_cents = 0 AND status != $1 ORDER BY created_at LIMIT 1`
	if err := r.db.GetContext(ctx, &p, query, types.StatusDeleted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ierr.NewError("no free plan configured").
				WithHint("Create a zero-rate plan to act as the expiration fallback").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return &p, nil
}

func (r *planRepository) List(ctx context.Context) ([]*plan.Plan, error) {
	var plans []*plan.Plan
	query := `SELECT * FROM subscription_plans WHERE status != $1 ORDER BY rate_cents`
	if err := r.db.SelectContext(ctx, &plans, query, types.StatusDeleted); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return plans, nil
}

func (r *planRepository) Update(ctx context.Context, p *plan.Plan) error {
	query := `
		UPDATE subscription_plans SET
			name = :name,
			rate_cents = :rate_cents,
			feature_set_id = :feature_set_id,
			status = :status,
			updated_at = :updated_at,
			updated_by = :updated_by
		WHERE id = :id`

	if _, err := r.db.NamedExecContext(ctx, query, p); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update plan").
			Mark(ierr.ErrDatabase)
	}
	return nil
}
