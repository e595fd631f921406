package store

import (
	merkletree "github.com/wealdtech/go-merkletree"

	"github.com/lightring/lightring/types"
)

// Store is the local proof store: an ordered, gap-free sequence of verified
// source-chain header updates keyed by slot, with a queryable [base, tip]
// window and a Merkle proof index over that window.
//
// The store grows monotonically except for RollbackTo, which only ever
// discards a suffix.
type Store interface {
	// SaveHeader appends a verified header update. The update must extend
	// the tip by exactly one slot; the first append sets the base.
	SaveHeader(update *types.HeaderUpdate) error

	// Header returns the update stored for the given slot.
	//
	// If no update is stored there, ErrHeaderNotFound is returned.
	Header(slot types.Slot) (*types.HeaderUpdate, error)

	// BaseSlot returns the first (oldest) stored slot, or nil if the store
	// is empty.
	BaseSlot() (*types.Slot, error)

	// TipSlot returns the last (newest) stored slot, or nil if the store is
	// empty.
	TipSlot() (*types.Slot, error)

	// RollbackTo discards every update stored after the given slot. A nil
	// slot rolls the store back to empty. Rolling back to the current tip,
	// or on an empty store, is a no-op.
	RollbackTo(slot *types.Slot) error

	// MerkleRoot returns the root of the proof index over the current
	// [base, tip] window.
	//
	// If the store is empty, ErrEmptyStore is returned.
	MerkleRoot() (types.Hash, error)

	// GenerateProof returns an inclusion proof for the update at the given
	// slot against the current window root.
	GenerateProof(slot types.Slot) (*HeaderProof, error)
}

// HeaderProof is an inclusion proof of one stored header update against the
// store's window root.
type HeaderProof struct {
	Slot  types.Slot
	Root  types.Hash
	Proof *merkletree.Proof
}

// Verify checks the proof against the update it claims to cover.
func (p *HeaderProof) Verify(update *types.HeaderUpdate) (bool, error) {
	if update.Slot != p.Slot {
		return false, nil
	}
	return merkletree.VerifyProof(LeafBytes(update), p.Proof, p.Root[:])
}

// LeafBytes is the proof-index leaf encoding of a stored update.
func LeafBytes(update *types.HeaderUpdate) []byte {
	bz := make([]byte, 8+types.HashSize)
	for i := 0; i < 8; i++ {
		bz[i] = byte(update.Slot >> (8 * i))
	}
	copy(bz[8:], update.HeaderRoot[:])
	return bz
}
