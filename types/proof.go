package types

import "errors"

// ProofUpdate is the cryptographic linkage payload proving a new client
// record is a valid successor to a prior one. It is produced only by the
// verification library and consumed only by the transaction assembler;
// nothing else constructs or inspects one.
type ProofUpdate struct {
	PrevTipRoot Hash
	NewTipRoot  Hash
	Items       [][]byte
}

// ValidateBasic performs stateless checks on the proof payload.
func (p *ProofUpdate) ValidateBasic() error {
	if p.NewTipRoot.IsZero() {
		return errors.New("empty new tip root")
	}
	if len(p.Items) == 0 {
		return errors.New("empty proof items")
	}
	return nil
}

// Bytes flattens the payload into witness bytes for the assembled
// transaction.
func (p *ProofUpdate) Bytes() []byte {
	size := 2 * HashSize
	for _, it := range p.Items {
		size += len(it)
	}
	bz := make([]byte, 0, size)
	bz = append(bz, p.PrevTipRoot[:]...)
	bz = append(bz, p.NewTipRoot[:]...)
	for _, it := range p.Items {
		bz = append(bz, it...)
	}
	return bz
}
