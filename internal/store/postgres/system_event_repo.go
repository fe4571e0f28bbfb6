package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/model"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/store"
)

type SystemEventRepo struct {
	db *DB
}

func NewSystemEventRepo(db *DB) *SystemEventRepo {
	return &SystemEventRepo{db: db}
}

func (r *SystemEventRepo) CreateTx(ctx context.Context, tx *sql.Tx, e *model.SystemEvent) (store.UpsertResult, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO system_events (chain_id, tx_hash, log_index, kind, payload, block_number, block_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (chain_id, tx_hash, log_index) DO NOTHING
	`, e.ChainID, e.TxHash, e.LogIndex, e.Kind, []byte(e.Payload), e.BlockNumber, e.BlockTime)
	if err != nil {
		return store.UpsertResult{}, fmt.Errorf("create system event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return store.UpsertResult{}, fmt.Errorf("create system event rows affected: %w", err)
	}
	return store.UpsertResult{Inserted: n > 0}, nil
}

func (r *SystemEventRepo) ListRecent(ctx context.Context, chainID model.ChainID, limit int) ([]model.SystemEvent, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT chain_id, tx_hash, log_index, kind, payload, block_number, block_time, created_at
		FROM system_events
		WHERE chain_id = $1
		ORDER BY block_number DESC, log_index DESC
		LIMIT $2
	`, chainID, limit)
	if err != nil {
		return nil, fmt.Errorf("query system events: %w", err)
	}
	defer rows.Close()

	var events []model.SystemEvent
	for rows.Next() {
		var (
			e       model.SystemEvent
			payload []byte
		)
		if err := rows.Scan(
			&e.ChainID, &e.TxHash, &e.LogIndex, &e.Kind, &payload,
			&e.BlockNumber, &e.BlockTime, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan system event: %w", err)
		}
		e.Payload = payload
		events = append(events, e)
	}
	return events, rows.Err()
}
