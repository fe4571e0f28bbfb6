package reducer

import (
	"context"
	"database/sql"
	"fmt"
	"slices"

	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/event"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/domain/model"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/notifier"
	"github.com/mfahriferdiansyah/rebased-sub002/internal/retry"
)

// Drop reasons. Dropped events are ordering violations: the causal row
// they depend on never arrived, and redelivery cannot conjure it.
const (
	dropMissingStrategy = "strategy_missing"
	dropDeletedStrategy = "strategy_deleted"
	dropOrphanSwap      = "orphan_swap"
)

// Every user-scoped handler opens with Users.EnsureTx so concurrent
// reductions for the same address serialize on the user row, and closes
// with the daily_stats upsert. Aggregate folds sit between the two and
// are gated on the event-keyed insert reporting Inserted, which is what
// makes replays side-effect free.

func (r *Reducer) applyStrategyCreated(ctx context.Context, tx *sql.Tx, ev event.RawEvent, data event.StrategyCreatedData) (outcome, error) {
	if err := r.repos.Users.EnsureTx(ctx, tx, data.User, ev.BlockTime); err != nil {
		return outcome{}, err
	}

	res, err := r.repos.Strategies.CreateTx(ctx, tx, &model.Strategy{
		ChainID:                 ev.ChainID,
		UserAddress:             data.User,
		StrategyID:              data.StrategyID,
		Tokens:                  data.Tokens,
		WeightsBps:              data.WeightsBps,
		RebalanceIntervalSecond: data.IntervalSeconds,
		CreatedAtBlock:          ev.BlockNumber,
	})
	if err != nil {
		return outcome{}, err
	}
	if !res.Inserted {
		return r.reconcileReplayedCreate(ctx, tx, ev, data)
	}

	if err := r.repos.Users.AddStrategyDeltaTx(ctx, tx, data.User, 1); err != nil {
		return outcome{}, err
	}
	return applied(note{channel: notifier.ChannelStrategyCreated, fields: map[string]any{
		"chain_id":    ev.ChainID,
		"user":        data.User,
		"strategy_id": data.StrategyID,
	}}), nil
}

// reconcileReplayedCreate inspects the first-seen row when a create
// arrives for an existing key. Identical payloads are plain replays;
// divergent ones are flagged, and the stored row stays untouched.
func (r *Reducer) reconcileReplayedCreate(ctx context.Context, tx *sql.Tx, ev event.RawEvent, data event.StrategyCreatedData) (outcome, error) {
	key := model.StrategyKey{ChainID: ev.ChainID, UserAddress: data.User, StrategyID: data.StrategyID}
	existing, err := r.repos.Strategies.GetTx(ctx, tx, key)
	if err != nil {
		return outcome{}, err
	}
	if existing == nil {
		// Row invisible only while a competing create is still in flight.
		return duplicate(), nil
	}
	if slices.Equal(existing.Tokens, data.Tokens) &&
		slices.Equal(existing.WeightsBps, data.WeightsBps) &&
		existing.RebalanceIntervalSecond == data.IntervalSeconds {
		return duplicate(), nil
	}
	r.logger.Warn("replayed create conflicts with stored row, keeping first-seen",
		"strategy", key.String(), "event", ev.Key())
	out := duplicate()
	out.conflict = true
	return out, nil
}

func (r *Reducer) applyStrategyUpdated(ctx context.Context, tx *sql.Tx, ev event.RawEvent, data event.StrategyUpdatedData) (outcome, error) {
	if err := r.repos.Users.EnsureTx(ctx, tx, data.User, ev.BlockTime); err != nil {
		return outcome{}, err
	}

	key := model.StrategyKey{ChainID: ev.ChainID, UserAddress: data.User, StrategyID: data.StrategyID}
	ok, err := r.repos.Strategies.UpdateConfigTx(ctx, tx, key, data.Tokens, data.WeightsBps, data.IntervalSeconds)
	if err != nil {
		return outcome{}, err
	}
	if !ok {
		return r.dropStrategyWrite(ctx, tx, ev, key, "update")
	}
	return applied(note{channel: notifier.ChannelStrategyUpdated, fields: map[string]any{
		"chain_id":    ev.ChainID,
		"user":        data.User,
		"strategy_id": data.StrategyID,
	}}), nil
}

func (r *Reducer) applyStrategyPauseState(ctx context.Context, tx *sql.Tx, ev event.RawEvent, strategyID int64, user string, paused bool) (outcome, error) {
	if err := r.repos.Users.EnsureTx(ctx, tx, user, ev.BlockTime); err != nil {
		return outcome{}, err
	}

	key := model.StrategyKey{ChainID: ev.ChainID, UserAddress: user, StrategyID: strategyID}
	ok, err := r.repos.Strategies.SetPausedTx(ctx, tx, key, paused)
	if err != nil {
		return outcome{}, err
	}
	verb, channel := "pause", notifier.ChannelStrategyPaused
	if !paused {
		verb, channel = "resume", notifier.ChannelStrategyResumed
	}
	if !ok {
		return r.dropStrategyWrite(ctx, tx, ev, key, verb)
	}
	return applied(note{channel: channel, fields: map[string]any{
		"chain_id":    ev.ChainID,
		"user":        user,
		"strategy_id": strategyID,
	}}), nil
}

func (r *Reducer) applyStrategyDeleted(ctx context.Context, tx *sql.Tx, ev event.RawEvent, data event.StrategyDeletedData) (outcome, error) {
	if err := r.repos.Users.EnsureTx(ctx, tx, data.User, ev.BlockTime); err != nil {
		return outcome{}, err
	}

	key := model.StrategyKey{ChainID: ev.ChainID, UserAddress: data.User, StrategyID: data.StrategyID}
	ok, err := r.repos.Strategies.SoftDeleteTx(ctx, tx, key, ev.BlockTime)
	if err != nil {
		return outcome{}, err
	}
	if !ok {
		existing, err := r.repos.Strategies.GetTx(ctx, tx, key)
		if err != nil {
			return outcome{}, err
		}
		if existing == nil {
			r.logger.Warn("delete for unknown strategy dropped",
				"strategy", key.String(), "event", ev.Key())
			return dropped(dropMissingStrategy), nil
		}
		// Already soft-deleted; the counter came down on the first delete.
		return duplicate(), nil
	}

	if err := r.repos.Users.AddStrategyDeltaTx(ctx, tx, data.User, -1); err != nil {
		return outcome{}, err
	}
	return applied(note{channel: notifier.ChannelStrategyDeleted, fields: map[string]any{
		"chain_id":    ev.ChainID,
		"user":        data.User,
		"strategy_id": data.StrategyID,
	}}), nil
}

// dropStrategyWrite classifies a guarded strategy update that matched no
// live row. A missing row means the write outran its create; a deleted
// row means delete already made the strategy terminal.
func (r *Reducer) dropStrategyWrite(ctx context.Context, tx *sql.Tx, ev event.RawEvent, key model.StrategyKey, verb string) (outcome, error) {
	existing, err := r.repos.Strategies.GetTx(ctx, tx, key)
	if err != nil {
		return outcome{}, err
	}
	if existing == nil {
		r.logger.Warn(verb+" for unknown strategy dropped",
			"strategy", key.String(), "event", ev.Key())
		return dropped(dropMissingStrategy), nil
	}
	r.logger.Debug(verb+" after delete ignored",
		"strategy", key.String(), "event", ev.Key())
	return dropped(dropDeletedStrategy), nil
}

func (r *Reducer) applyRebalanceExecuted(ctx context.Context, tx *sql.Tx, ev event.RawEvent, data event.RebalanceExecutedData) (outcome, error) {
	units, price, cost, err := gasCost(data.GasUsed, data.GasPrice)
	if err != nil {
		return outcome{}, retry.Terminal(fmt.Errorf("rebalance payload: %w", err))
	}

	if err := r.repos.Users.EnsureTx(ctx, tx, data.User, ev.BlockTime); err != nil {
		return outcome{}, err
	}

	res, err := r.repos.Rebalances.CreateTx(ctx, tx, &model.Rebalance{
		ChainID:     ev.ChainID,
		TxHash:      ev.TxHash,
		LogIndex:    ev.LogIndex,
		UserAddress: data.User,
		StrategyID:  data.StrategyID,
		DriftBps:    data.DriftBps,
		DriftPct:    float64(data.DriftBps) / 100,
		GasUsed:     units.String(),
		GasPrice:    price.String(),
		Status:      model.RebalanceStatusSuccess,
		Executor:    data.Executor,
		SwapVolume:  "0",
		BlockNumber: ev.BlockNumber,
		BlockTime:   ev.BlockTime,
	})
	if err != nil {
		return outcome{}, err
	}
	if !res.Inserted {
		return duplicate(), nil
	}

	if err := r.repos.Users.RecordRebalanceTx(ctx, tx, data.User, cost.String()); err != nil {
		return outcome{}, err
	}
	key := model.StrategyKey{ChainID: ev.ChainID, UserAddress: data.User, StrategyID: data.StrategyID}
	ok, err := r.repos.Strategies.ApplyRebalanceTx(ctx, tx, key, data.DriftBps)
	if err != nil {
		return outcome{}, err
	}
	if !ok {
		// Row recorded, strategy roll-up skipped: the create never arrived.
		r.logger.Warn("rebalance for unknown strategy, aggregates skipped",
			"strategy", key.String(), "event", ev.Key())
	}
	if err := r.repos.DailyStats.ApplyRebalanceTx(ctx, tx, ev.ChainID, model.UTCDay(ev.BlockTime), units.String(), data.DriftBps); err != nil {
		return outcome{}, err
	}

	return applied(
		note{channel: notifier.ChannelRebalanceExecuted, fields: map[string]any{
			"chain_id":    ev.ChainID,
			"user":        data.User,
			"strategy_id": data.StrategyID,
			"tx_hash":     ev.TxHash,
			"drift_bps":   data.DriftBps,
			"gas_used":    units.String(),
		}},
		note{channel: notifier.ChannelGasPriceUpdated, fields: map[string]any{
			"chain_id":     ev.ChainID,
			"gas_price":    price.String(),
			"block_number": ev.BlockNumber,
		}},
	), nil
}

func (r *Reducer) applyRebalanceFailed(ctx context.Context, tx *sql.Tx, ev event.RawEvent, data event.RebalanceFailedData) (outcome, error) {
	units, price, cost, err := gasCost(data.GasUsed, data.GasPrice)
	if err != nil {
		return outcome{}, retry.Terminal(fmt.Errorf("rebalance payload: %w", err))
	}

	if err := r.repos.Users.EnsureTx(ctx, tx, data.User, ev.BlockTime); err != nil {
		return outcome{}, err
	}

	reason := data.Reason
	res, err := r.repos.Rebalances.CreateTx(ctx, tx, &model.Rebalance{
		ChainID:       ev.ChainID,
		TxHash:        ev.TxHash,
		LogIndex:      ev.LogIndex,
		UserAddress:   data.User,
		StrategyID:    data.StrategyID,
		GasUsed:       units.String(),
		GasPrice:      price.String(),
		Status:        model.RebalanceStatusFailed,
		FailureReason: &reason,
		SwapVolume:    "0",
		BlockNumber:   ev.BlockNumber,
		BlockTime:     ev.BlockTime,
	})
	if err != nil {
		return outcome{}, err
	}
	if !res.Inserted {
		return duplicate(), nil
	}

	// Failed attempts burn gas but never touch strategy aggregates or the
	// rebalance counter: avg drift and totals track successes only.
	if err := r.repos.Users.AddGasSpentTx(ctx, tx, data.User, cost.String()); err != nil {
		return outcome{}, err
	}
	if err := r.repos.DailyStats.ApplyFailedRebalanceTx(ctx, tx, ev.ChainID, model.UTCDay(ev.BlockTime), units.String()); err != nil {
		return outcome{}, err
	}

	return applied(note{channel: notifier.ChannelRebalanceFailed, fields: map[string]any{
		"chain_id":    ev.ChainID,
		"user":        data.User,
		"strategy_id": data.StrategyID,
		"tx_hash":     ev.TxHash,
		"reason":      data.Reason,
	}}), nil
}

func (r *Reducer) applySwapExecuted(ctx context.Context, tx *sql.Tx, ev event.RawEvent, data event.SwapExecutedData) (outcome, error) {
	amountIn, err := parseNumeric("amount_in", data.AmountIn)
	if err != nil {
		return outcome{}, retry.Terminal(fmt.Errorf("swap payload: %w", err))
	}
	amountOut, err := parseNumeric("amount_out", data.AmountOut)
	if err != nil {
		return outcome{}, retry.Terminal(fmt.Errorf("swap payload: %w", err))
	}

	if err := r.repos.Users.EnsureTx(ctx, tx, data.User, ev.BlockTime); err != nil {
		return outcome{}, err
	}

	parent, err := r.repos.Rebalances.FindParentTx(ctx, tx, ev.ChainID, ev.TxHash, ev.LogIndex)
	if err != nil {
		return outcome{}, err
	}
	if parent == nil {
		r.logger.Warn("swap without parent rebalance dropped",
			"event", ev.Key(), "swap_index", data.SwapIndex)
		return dropped(dropOrphanSwap), nil
	}

	res, err := r.repos.Swaps.CreateTx(ctx, tx, &model.Swap{
		ChainID:           ev.ChainID,
		TxHash:            ev.TxHash,
		LogIndex:          ev.LogIndex,
		SwapIndex:         data.SwapIndex,
		UserAddress:       data.User,
		StrategyID:        data.StrategyID,
		RebalanceTxHash:   parent.TxHash,
		RebalanceLogIndex: parent.LogIndex,
		TokenIn:           data.TokenIn,
		TokenOut:          data.TokenOut,
		AmountIn:          amountIn.String(),
		AmountOut:         amountOut.String(),
		PriceImpactBps:    data.PriceImpactBps,
		BlockNumber:       ev.BlockNumber,
		BlockTime:         ev.BlockTime,
	})
	if err != nil {
		return outcome{}, err
	}
	if !res.Inserted {
		return duplicate(), nil
	}

	key := model.StrategyKey{ChainID: ev.ChainID, UserAddress: data.User, StrategyID: data.StrategyID}
	ok, err := r.repos.Strategies.ApplySwapTx(ctx, tx, key, amountIn.String())
	if err != nil {
		return outcome{}, err
	}
	if !ok {
		r.logger.Warn("swap for unknown strategy, aggregates skipped",
			"strategy", key.String(), "event", ev.Key())
	}
	if err := r.repos.Rebalances.AttachSwapTx(ctx, tx, ev.ChainID, parent.TxHash, parent.LogIndex, amountIn.String()); err != nil {
		return outcome{}, err
	}
	if err := r.repos.DailyStats.ApplySwapTx(ctx, tx, ev.ChainID, model.UTCDay(ev.BlockTime), amountIn.String()); err != nil {
		return outcome{}, err
	}

	return applied(note{channel: notifier.ChannelSwapExecuted, fields: map[string]any{
		"chain_id":    ev.ChainID,
		"user":        data.User,
		"strategy_id": data.StrategyID,
		"tx_hash":     ev.TxHash,
		"token_in":    data.TokenIn,
		"token_out":   data.TokenOut,
		"amount_in":   amountIn.String(),
	}}), nil
}

func (r *Reducer) applySystemEvent(ctx context.Context, tx *sql.Tx, ev event.RawEvent, kind model.SystemEventKind, fields map[string]any) (outcome, error) {
	res, err := r.repos.SystemEvents.CreateTx(ctx, tx, &model.SystemEvent{
		ChainID:     ev.ChainID,
		TxHash:      ev.TxHash,
		LogIndex:    ev.LogIndex,
		Kind:        kind,
		Payload:     ev.Data,
		BlockNumber: ev.BlockNumber,
		BlockTime:   ev.BlockTime,
	})
	if err != nil {
		return outcome{}, err
	}
	if !res.Inserted {
		return duplicate(), nil
	}

	fields["chain_id"] = ev.ChainID
	fields["kind"] = string(kind)
	fields["tx_hash"] = ev.TxHash
	return applied(note{channel: notifier.ChannelSystemAlert, fields: fields}), nil
}
