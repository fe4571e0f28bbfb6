package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/model"
)

type DeadLetterRepo struct {
	db *DB
}

func NewDeadLetterRepo(db *DB) *DeadLetterRepo {
	return &DeadLetterRepo{db: db}
}

// Insert parks an exhausted queue item. Runs outside any reducer
// transaction: by the time an item dead-letters, its reduction attempt has
// already rolled back.
func (r *DeadLetterRepo) Insert(ctx context.Context, dl *model.DeadLetter) error {
	if dl.ID == uuid.Nil {
		dl.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO dead_letters (id, chain_id, event_name, tx_hash, log_index, payload, failure, attempts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, dl.ID, dl.ChainID, dl.EventName, dl.TxHash, dl.LogIndex,
		[]byte(dl.Payload), dl.Failure, dl.Attempts,
	)
	if err != nil {
		return fmt.Errorf("insert dead letter: %w", err)
	}
	return nil
}

func (r *DeadLetterRepo) List(ctx context.Context, chainID model.ChainID, limit int) ([]model.DeadLetter, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, chain_id, event_name, tx_hash, log_index, payload, failure, attempts, created_at
		FROM dead_letters
		WHERE chain_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, chainID, limit)
	if err != nil {
		return nil, fmt.Errorf("query dead letters: %w", err)
	}
	defer rows.Close()

	var letters []model.DeadLetter
	for rows.Next() {
		var (
			dl      model.DeadLetter
			payload []byte
		)
		if err := rows.Scan(
			&dl.ID, &dl.ChainID, &dl.EventName, &dl.TxHash, &dl.LogIndex,
			&payload, &dl.Failure, &dl.Attempts, &dl.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan dead letter: %w", err)
		}
		dl.Payload = payload
		letters = append(letters, dl)
	}
	return letters, rows.Err()
}

func (r *DeadLetterRepo) Count(ctx context.Context, chainID model.ChainID) (int64, error) {
	ctx, cancel := withTimeout(ctx, DefaultQueryTimeout)
	defer cancel()

	var n int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM dead_letters WHERE chain_id = $1", chainID,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count dead letters: %w", err)
	}
	return n, nil
}
