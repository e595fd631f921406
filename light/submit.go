package light

import (
	"context"
	"fmt"
	"time"

	"github.com/lightring/lightring/keyring"
	"github.com/lightring/lightring/rpc"
	"github.com/lightring/lightring/types"
)

// signAndSend drives one submission attempt through its states:
// Built -> Signed -> Broadcast -> {Confirmed | TimedOut | Rejected}.
//
// Signing failures are fatal to the attempt and never retried. Broadcast
// uses the passthrough validator policy; a duplicate-transaction rejection
// gets a best-effort pool snapshot attached for triage. After a successful
// broadcast the transaction status is polled until it is committed to a
// block or the deadline passes. A timed-out transaction may still land
// later; recovery is the caller's concern.
//
// The store rollback on failure is owned by the callers, who hold the
// checkpoint.
func (d *Driver) signAndSend(ctx context.Context, tx *types.Transaction, consumed []types.CellOutput) error {
	key, err := d.keyring.GetKey(d.cfg.KeyName)
	if err != nil {
		return ErrKeyAccess{KeyName: d.cfg.KeyName, Reason: err}
	}
	network, err := d.Network(ctx)
	if err != nil {
		return err
	}
	signed, err := keyring.SignTransaction(tx, consumed, key, network)
	if err != nil {
		return ErrKeyAccess{KeyName: d.cfg.KeyName, Reason: err}
	}

	d.metrics.Submissions.Add(1)
	hash, err := d.rpc.SendTransaction(ctx, signed, rpc.ValidatorPassthrough)
	if err != nil {
		var diagnostics string
		if rpc.IsDuplicateTx(err) {
			// Best effort: the pool snapshot aids triage but the
			// broadcast stays failed either way.
			if info, poolErr := d.rpc.TxPoolInfo(ctx); poolErr == nil {
				diagnostics = info.String()
			}
		}
		return ErrSubmission{Reason: err, Diagnostics: diagnostics}
	}

	d.logger.Info("transaction sent, waiting until committed to a block", "hash", hash)
	start := time.Now()
	if err := d.waitCommitted(ctx, hash); err != nil {
		return err
	}
	d.metrics.Confirmations.Add(1)
	d.metrics.ConfirmSeconds.Observe(time.Since(start).Seconds())
	d.logger.Info("transaction committed to block", "hash", hash)
	return nil
}

// waitCommitted polls the transaction status at the driver's poll interval
// until it is committed or the confirmation deadline passes.
func (d *Driver) waitCommitted(ctx context.Context, hash types.Hash) error {
	deadline := time.NewTimer(d.confirmTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		status, err := d.rpc.GetTransactionStatus(ctx, hash)
		if err != nil {
			d.logger.Debug("transaction status query failed", "hash", hash, "err", err)
		} else {
			switch status {
			case rpc.TxStatusCommitted:
				return nil
			case rpc.TxStatusRejected:
				return ErrSubmission{Reason: fmt.Errorf("transaction %s rejected by the pool", hash)}
			}
			d.logger.Debug("transaction not committed yet", "hash", hash, "status", status.String())
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return ErrTimeout{TxHash: hash, After: d.confirmTimeout}
		case <-ticker.C:
		}
	}
}
