package keyring

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/lightring/lightring/types"
)

// witnessPlaceholder is the zeroed signature slot hashed into the signing
// message before the real signature replaces it.
var witnessPlaceholder = make([]byte, 65)

// SignTransaction fills the witnesses of the key's lock group with a
// recoverable signature over the sighash-all message. Inputs guarded by
// other locks (the ring cells unlock through the proof witness) are left
// alone, but at least one input must belong to the signing key.
func SignTransaction(tx *types.Transaction, consumed []types.CellOutput, key *KeyPair, network Network) (*types.Transaction, error) {
	if len(consumed) != len(tx.Inputs) {
		return nil, fmt.Errorf("have %d consumed outputs for %d inputs", len(consumed), len(tx.Inputs))
	}

	lock := key.Address(network).LockScript()
	lockHash := lock.Hash()
	groupFirst := -1
	for i, out := range consumed {
		if out.Lock.Hash() == lockHash {
			groupFirst = i
			break
		}
	}
	if groupFirst == -1 {
		return nil, fmt.Errorf("no input is locked by the signing key")
	}

	digest := sighashAll(tx)
	sig, err := key.SignRecoverable(digest)
	if err != nil {
		return nil, fmt.Errorf("signing sighash: %w", err)
	}

	// The signature rides in the first witness of the lock group, the other
	// input witnesses stay empty. Witnesses beyond the input range (the
	// assembler parks the proof payload there) are preserved.
	signed := *tx
	witnesses := make([][]byte, len(tx.Inputs))
	for i := range witnesses {
		witnesses[i] = []byte{}
	}
	witnesses[groupFirst] = sig
	if len(tx.Witnesses) > len(tx.Inputs) {
		witnesses = append(witnesses, tx.Witnesses[len(tx.Inputs):]...)
	}
	signed.Witnesses = witnesses
	return &signed, nil
}

// VerifyTransaction checks the lock-group signature against the sighash-all
// message for the given key.
func VerifyTransaction(tx *types.Transaction, key *KeyPair) bool {
	// The transaction hash excludes witnesses, so the signing message is
	// reproducible from the signed transaction as-is.
	digest := sighashAll(tx)
	for _, w := range tx.Witnesses {
		if len(w) == len(witnessPlaceholder) && key.VerifyRecoverable(digest, w) {
			return true
		}
	}
	return false
}

// sighashAll hashes the transaction hash together with the length-prefixed
// placeholder witness of the lock group.
func sighashAll(tx *types.Transaction) types.Hash {
	txHash := tx.Hash()
	var buf bytes.Buffer
	buf.Write(txHash[:])
	var lenBz [8]byte
	binary.LittleEndian.PutUint64(lenBz[:], uint64(len(witnessPlaceholder)))
	buf.Write(lenBz[:])
	buf.Write(witnessPlaceholder)
	return types.LedgerHash(buf.Bytes())
}
