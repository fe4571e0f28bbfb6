package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/model"
)

type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

// EnsureTx creates the user row on first sight and widens the activity
// window on replay. Out-of-order delivery may present an older event after
// a newer one, so both bounds move monotonically outward, never inward.
func (r *UserRepo) EnsureTx(ctx context.Context, tx *sql.Tx, address string, activeAt time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO users (address, first_seen_at, last_active_at)
		VALUES ($1, $2, $2)
		ON CONFLICT (address) DO UPDATE SET
			first_seen_at = LEAST(users.first_seen_at, EXCLUDED.first_seen_at),
			last_active_at = GREATEST(users.last_active_at, EXCLUDED.last_active_at),
			updated_at = now()
	`, address, activeAt)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

func (r *UserRepo) AddStrategyDeltaTx(ctx context.Context, tx *sql.Tx, address string, delta int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE users SET
			strategy_count = GREATEST(0, strategy_count + $2),
			updated_at = now()
		WHERE address = $1
	`, address, delta)
	if err != nil {
		return fmt.Errorf("add user strategy delta: %w", err)
	}
	return nil
}

func (r *UserRepo) RecordRebalanceTx(ctx context.Context, tx *sql.Tx, address string, gasSpent string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE users SET
			total_rebalances = total_rebalances + 1,
			total_gas_spent = total_gas_spent + $2::numeric,
			updated_at = now()
		WHERE address = $1
	`, address, gasSpent)
	if err != nil {
		return fmt.Errorf("record user rebalance: %w", err)
	}
	return nil
}

// AddGasSpentTx accounts gas for failed rebalances, which burn gas without
// counting toward total_rebalances.
func (r *UserRepo) AddGasSpentTx(ctx context.Context, tx *sql.Tx, address string, gasSpent string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE users SET
			total_gas_spent = total_gas_spent + $2::numeric,
			updated_at = now()
		WHERE address = $1
	`, address, gasSpent)
	if err != nil {
		return fmt.Errorf("add user gas spent: %w", err)
	}
	return nil
}

func (r *UserRepo) Get(ctx context.Context, address string) (*model.User, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var u model.User
	err := r.db.QueryRowContext(ctx, `
		SELECT address, strategy_count, total_rebalances, total_gas_spent::text,
			   first_seen_at, last_active_at, created_at, updated_at
		FROM users
		WHERE address = $1
	`, address).Scan(
		&u.Address, &u.StrategyCount, &u.TotalRebalances, &u.TotalGasSpent,
		&u.FirstSeenAt, &u.LastActiveAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *UserRepo) List(ctx context.Context, limit, offset int) ([]model.User, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT address, strategy_count, total_rebalances, total_gas_spent::text,
			   first_seen_at, last_active_at, created_at, updated_at
		FROM users
		ORDER BY last_active_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(
			&u.Address, &u.StrategyCount, &u.TotalRebalances, &u.TotalGasSpent,
			&u.FirstSeenAt, &u.LastActiveAt, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
