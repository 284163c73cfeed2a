package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed Store implementation.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed subscription store and seeds
// DefaultPlans if the plans table is empty.
func NewPostgresStore(ctx context.Context, pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	s := &PostgresStore{pool: pool}

	for _, p := range DefaultPlans {
		_, err := pool.Exec(ctx,
			`INSERT INTO plans (id, name, price_cents, duration_days)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO NOTHING`,
			p.ID, p.Name, p.PriceCents, p.DurationDays,
		)
		if err != nil {
			return nil, fmt.Errorf("seed plan %s: %w", p.ID, err)
		}
	}
	return s, nil
}

func (s *PostgresStore) Plans() ([]Plan, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx,
		`SELECT id, name, price_cents, duration_days FROM plans ORDER BY price_cents ASC`)
	if err != nil {
		return nil, fmt.Errorf("query plans: %w", err)
	}
	defer rows.Close()

	var plans []Plan
	for rows.Next() {
		var p Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.DurationDays); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate plans: %w", err)
	}
	return plans, nil
}

func (s *PostgresStore) GetPlan(id string) (Plan, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	var p Plan
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, price_cents, duration_days FROM plans WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Name, &p.PriceCents, &p.DurationDays)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Plan{}, fmt.Errorf("%w: %s", ErrUnknownPlan, id)
		}
		return Plan{}, fmt.Errorf("get plan: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) Subscribe(userID, planID string) (Subscription, error) {
	plan, err := s.GetPlan(planID)
	if err != nil {
		return Subscription{}, err
	}

	if _, active, err := s.ActiveSubscription(userID); err != nil {
		return Subscription{}, err
	} else if active {
		return Subscription{}, ErrAlreadySubscribed
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	sub := Subscription{UserID: userID, PlanID: planID}
	err = s.pool.QueryRow(ctx,
		`INSERT INTO subscriptions (user_id, plan_id, expires_at)
		 VALUES ($1::uuid, $2, NOW() + make_interval(days => $3))
		 RETURNING id::text, started_at, expires_at`,
		userID, planID, plan.DurationDays,
	).Scan(&sub.ID, &sub.StartedAt, &sub.ExpiresAt)
	if err != nil {
		return Subscription{}, fmt.Errorf("create subscription: %w", err)
	}
	return sub, nil
}

func (s *PostgresStore) Cancel(userID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	cmd, err := s.pool.Exec(ctx,
		`UPDATE subscriptions
		 SET cancelled = TRUE
		 WHERE user_id = $1::uuid AND NOT cancelled AND expires_at > NOW()`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("cancel subscription: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNoActiveSubscription
	}
	return nil
}

func (s *PostgresStore) ActiveSubscription(userID string) (Subscription, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	var sub Subscription
	err := s.pool.QueryRow(ctx,
		`SELECT id::text, user_id::text, plan_id, started_at, expires_at, cancelled
		 FROM subscriptions
		 WHERE user_id = $1::uuid AND NOT cancelled AND expires_at > NOW()
		 ORDER BY started_at DESC
		 LIMIT 1`,
		userID,
	).Scan(&sub.ID, &sub.UserID, &sub.PlanID, &sub.StartedAt, &sub.ExpiresAt, &sub.Cancelled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Subscription{}, false, nil
		}
		return Subscription{}, false, fmt.Errorf("get active subscription: %w", err)
	}
	return sub, true, nil
}
