// Package verifier provides the default implementation of the light-client
// aggregation step. It enforces the structural linkage rules (batch
// contiguity, strict adjacency with the prior on-chain record, agreement
// between the local store and the on-chain frontier) and produces the
// successor client record plus the proof payload binding it to its
// predecessor. The cryptographic attestation content is opaque to it; a
// deployment wires in its own library through the same interface when it
// needs real sync-committee verification.
package verifier

import (
	"errors"
	"fmt"

	"github.com/lightring/lightring/store"
	"github.com/lightring/lightring/types"
)

// Verifier is the default aggregation implementation.
type Verifier struct{}

// New returns a ready verifier.
func New() *Verifier {
	return &Verifier{}
}

// Aggregate verifies an aligned update batch against the prior on-chain
// client (nil at bootstrap) and returns the successor client record
// spanning the batch plus the proof update linking the two. The store is
// only read, never mutated.
func (v *Verifier) Aggregate(
	chainID string,
	updates []*types.HeaderUpdate,
	st store.Store,
	onchain *types.Client,
) (*types.Client, *types.ProofUpdate, error) {
	if len(updates) == 0 {
		return nil, nil, errors.New("empty update batch")
	}
	for _, u := range updates {
		if err := u.ValidateBasic(); err != nil {
			return nil, nil, fmt.Errorf("update at slot %d: %w", u.Slot, err)
		}
	}
	for i := 1; i < len(updates); i++ {
		if updates[i].Slot != updates[i-1].Slot+1 {
			return nil, nil, fmt.Errorf("batch gap between slots %d and %d",
				updates[i-1].Slot, updates[i].Slot)
		}
	}

	tip, err := st.TipSlot()
	if err != nil {
		return nil, nil, fmt.Errorf("reading store tip: %w", err)
	}

	var prevTipRoot types.Hash
	if onchain != nil {
		// Successive client records must be strictly adjacent.
		if updates[0].Slot != onchain.MaximalSlot+1 {
			return nil, nil, fmt.Errorf("batch starts at slot %d, prior client ends at %d",
				updates[0].Slot, onchain.MaximalSlot)
		}
		// The local cache must agree with the chain before extending it.
		if tip == nil {
			return nil, nil, fmt.Errorf("local store is empty but chain %s attests up to slot %d: resynchronize",
				chainID, onchain.MaximalSlot)
		}
		if *tip != onchain.MaximalSlot {
			return nil, nil, fmt.Errorf("local store tip %d disagrees with on-chain frontier %d: resynchronize",
				*tip, onchain.MaximalSlot)
		}
		prevTipRoot = onchain.TipHeaderRoot
	} else if tip != nil && updates[0].Slot != *tip+1 {
		return nil, nil, fmt.Errorf("batch starts at slot %d, local store ends at %d",
			updates[0].Slot, *tip)
	}

	// Per-update linkage items: a running digest chaining each verified
	// header to its predecessor state.
	items := make([][]byte, len(updates))
	running := prevTipRoot
	for i, u := range updates {
		link := types.LedgerHash(running[:], store.LeafBytes(u), u.Attestation)
		items[i] = link[:]
		running = link
	}

	last := updates[len(updates)-1]
	client := &types.Client{
		MinimalSlot:   updates[0].Slot,
		MaximalSlot:   last.Slot,
		TipHeaderRoot: last.HeaderRoot,
	}
	proof := &types.ProofUpdate{
		PrevTipRoot: prevTipRoot,
		NewTipRoot:  last.HeaderRoot,
		Items:       items,
	}
	return client, proof, nil
}
