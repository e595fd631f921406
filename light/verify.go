package light

import (
	"github.com/lightring/lightring/store"
	"github.com/lightring/lightring/types"
)

// Verifier is the cryptographic aggregation step, treated as a verified
// black box: given an aligned update batch, the local proof store and the
// prior on-chain client record (nil at bootstrap), it produces the
// successor client record spanning the batch and the proof payload linking
// it to its predecessor. It must not mutate the store.
type Verifier interface {
	Aggregate(chainID string, updates []*types.HeaderUpdate, st store.Store, onchain *types.Client) (*types.Client, *types.ProofUpdate, error)
}

// newClientAndProof runs alignment and verification and appends the
// verified updates to the local proof store. The returned checkpoint is the
// store tip captured before any mutation (nil for an empty store); the
// caller owns it until the workflow's outcome is known and must feed it
// back into rollbackTo on any downstream failure.
//
// The minimal-span policy is enforced here, before any transaction is
// assembled: a span below minimalUpdatesCount rolls the store back
// immediately and fails, because such an update would be rejected on-chain
// anyway.
func (d *Driver) newClientAndProof(
	chainID string,
	updates []*types.HeaderUpdate,
	onchain *types.Client,
	minimalUpdatesCount uint8,
) (*types.Slot, *types.Client, *types.ProofUpdate, error) {
	aligned, err := alignUpdates(chainID, updates, onchain)
	if err != nil {
		return nil, nil, nil, err
	}

	checkpoint, err := d.store.TipSlot()
	if err != nil {
		return nil, nil, nil, ErrStorage{Op: "read tip", Reason: err}
	}

	client, proof, err := d.verifier.Aggregate(chainID, aligned, d.store, onchain)
	if err != nil {
		return nil, nil, nil, ErrVerification{
			ChainID: chainID,
			From:    aligned[0].Slot,
			To:      aligned[len(aligned)-1].Slot,
			Reason:  err,
		}
	}

	for _, update := range aligned {
		if err := d.store.SaveHeader(update); err != nil {
			return nil, nil, nil, d.rollbackTo(checkpoint, ErrStorage{Op: "append", Reason: err})
		}
	}

	span := client.MaximalSlot - client.MinimalSlot + 1
	if span < uint64(minimalUpdatesCount) {
		return nil, nil, nil, d.rollbackTo(checkpoint, ErrInsufficientUpdates{
			Span: span,
			Want: uint64(minimalUpdatesCount),
		})
	}

	return checkpoint, client, proof, nil
}

// rollbackTo drives the store back to the checkpoint and returns cause. A
// rollback failure is fatal and reported in place of cause, never swallowed
// by it.
func (d *Driver) rollbackTo(checkpoint *types.Slot, cause error) error {
	if err := d.store.RollbackTo(checkpoint); err != nil {
		d.logger.Error("rollback failed", "err", err, "cause", cause)
		return ErrStorage{Op: "rollback", Reason: err}
	}
	d.metrics.Rollbacks.Add(1)
	return cause
}
