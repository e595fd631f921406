package types

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// HeaderUpdate is one verified source-chain header slot: the unit fetched
// from the source chain, aligned against on-chain state, aggregated by the
// verifier and appended to the local proof store.
//
// Attestation carries the opaque sync-committee payload consumed by the
// verification library; this package never inspects it.
type HeaderUpdate struct {
	Slot        Slot
	HeaderRoot  Hash
	Attestation []byte
}

// ValidateBasic performs stateless checks on the update.
func (u *HeaderUpdate) ValidateBasic() error {
	if u.HeaderRoot.IsZero() {
		return errors.New("empty header root")
	}
	if len(u.Attestation) == 0 {
		return errors.New("empty attestation")
	}
	return nil
}

// MarshalBinary encodes the update for storage:
// slot u64 LE | header_root 32B | attestation bytes.
func (u *HeaderUpdate) MarshalBinary() ([]byte, error) {
	bz := make([]byte, 8+HashSize+len(u.Attestation))
	binary.LittleEndian.PutUint64(bz[:8], u.Slot)
	copy(bz[8:8+HashSize], u.HeaderRoot[:])
	copy(bz[8+HashSize:], u.Attestation)
	return bz, nil
}

// UnmarshalBinary decodes a stored update.
func (u *HeaderUpdate) UnmarshalBinary(bz []byte) error {
	if len(bz) < 8+HashSize {
		return fmt.Errorf("header update must be at least %d bytes, got %d", 8+HashSize, len(bz))
	}
	u.Slot = binary.LittleEndian.Uint64(bz[:8])
	copy(u.HeaderRoot[:], bz[8:8+HashSize])
	u.Attestation = append([]byte(nil), bz[8+HashSize:]...)
	return nil
}

func (u *HeaderUpdate) String() string {
	return fmt.Sprintf("HeaderUpdate{slot: %d, root: %s}", u.Slot, u.HeaderRoot)
}
