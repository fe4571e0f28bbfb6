package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/model"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/store"
)

type BackfillRepo struct {
	db *DB
}

func NewBackfillRepo(db *DB) *BackfillRepo {
	return &BackfillRepo{db: db}
}

// Ensure seeds the progress row. The watermark starts one below the
// deployment block so the first batch begins exactly at deployment.
func (r *BackfillRepo) Ensure(ctx context.Context, chainID model.ChainID, deploymentBlock int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO backfill_progress (chain_id, deployment_block, latest_indexed_block, current_block)
		VALUES ($1, $2, $2 - 1, $2 - 1)
		ON CONFLICT (chain_id) DO NOTHING
	`, chainID, deploymentBlock)
	if err != nil {
		return fmt.Errorf("ensure backfill progress: %w", err)
	}
	return nil
}

func (r *BackfillRepo) Get(ctx context.Context, chainID model.ChainID) (*model.BackfillProgress, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var p model.BackfillProgress
	err := r.db.QueryRowContext(ctx, `
		SELECT chain_id, deployment_block, latest_indexed_block, current_block,
			   is_running, is_paused, lease_owner, lease_expires_at, updated_at
		FROM backfill_progress
		WHERE chain_id = $1
	`, chainID).Scan(
		&p.ChainID, &p.DeploymentBlock, &p.LatestIndexedBlock, &p.CurrentBlock,
		&p.IsRunning, &p.IsPaused, &p.LeaseOwner, &p.LeaseExpiresAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get backfill progress: %w", err)
	}
	return &p, nil
}

// ClaimRun takes the chain's run lease. The conditional UPDATE is the whole
// arbitration: exactly one caller transitions is_running under the row lock,
// everyone else sees zero rows and gets ErrAlreadyRunning. A crashed holder
// blocks successors only until lease_expires_at passes.
func (r *BackfillRepo) ClaimRun(ctx context.Context, chainID model.ChainID, owner string, leaseFor time.Duration) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE backfill_progress SET
			is_running = true,
			lease_owner = $2,
			lease_expires_at = now() + make_interval(secs => $3),
			updated_at = now()
		WHERE chain_id = $1
		  AND (is_running = false OR lease_expires_at IS NULL OR lease_expires_at < now())
	`, chainID, owner, leaseFor.Seconds())
	if err != nil {
		return fmt.Errorf("claim backfill run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("claim backfill run rows affected: %w", err)
	}
	if n == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM backfill_progress WHERE chain_id = $1)", chainID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check backfill progress exists: %w", err)
		}
		if !exists {
			return fmt.Errorf("no backfill progress row for chain %d", chainID)
		}
		return store.ErrAlreadyRunning
	}
	return nil
}

// ReleaseRun gives the lease back. The advisory pause flag survives release
// so a paused scan stays visibly paused until resumed.
func (r *BackfillRepo) ReleaseRun(ctx context.Context, chainID model.ChainID, owner string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE backfill_progress SET
			is_running = false,
			lease_owner = NULL,
			lease_expires_at = NULL,
			updated_at = now()
		WHERE chain_id = $1 AND lease_owner = $2
	`, chainID, owner)
	if err != nil {
		return fmt.Errorf("release backfill run: %w", err)
	}
	return nil
}

func (r *BackfillRepo) ExtendLease(ctx context.Context, chainID model.ChainID, owner string, leaseFor time.Duration, currentBlock int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE backfill_progress SET
			lease_expires_at = now() + make_interval(secs => $3),
			current_block = $4,
			updated_at = now()
		WHERE chain_id = $1 AND lease_owner = $2 AND is_running = true
	`, chainID, owner, leaseFor.Seconds(), currentBlock)
	if err != nil {
		return fmt.Errorf("extend backfill lease: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("extend backfill lease rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrLeaseLost
	}
	return nil
}

// SetIndexed advances the scan watermark. GREATEST keeps a late or replayed
// writer from moving it backwards.
func (r *BackfillRepo) SetIndexed(ctx context.Context, chainID model.ChainID, latestIndexedBlock int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE backfill_progress SET
			latest_indexed_block = GREATEST(latest_indexed_block, $2),
			updated_at = now()
		WHERE chain_id = $1
	`, chainID, latestIndexedBlock)
	if err != nil {
		return fmt.Errorf("set backfill indexed: %w", err)
	}
	return nil
}

func (r *BackfillRepo) SetPaused(ctx context.Context, chainID model.ChainID, paused bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE backfill_progress SET
			is_paused = $2,
			updated_at = now()
		WHERE chain_id = $1
	`, chainID, paused)
	if err != nil {
		return fmt.Errorf("set backfill paused: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set backfill paused rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("no backfill progress row for chain %d", chainID)
	}
	return nil
}
