package types

import (
	"encoding/binary"
	"fmt"
)

// ScriptHashType selects how a script's code hash is resolved on-chain.
type ScriptHashType byte

const (
	HashTypeData ScriptHashType = 0
	HashTypeType ScriptHashType = 1
)

// Script locks or types a cell on the ledger.
type Script struct {
	CodeHash Hash
	HashType ScriptHashType
	Args     []byte
}

// Hash returns the script's identifying digest.
func (s *Script) Hash() Hash {
	return LedgerHash(s.CodeHash[:], []byte{byte(s.HashType)}, s.Args)
}

// Equal reports whether two scripts are byte-identical.
func (s *Script) Equal(other *Script) bool {
	if other == nil {
		return false
	}
	return s.Hash() == other.Hash()
}

// OutPoint names one output of a prior transaction.
type OutPoint struct {
	TxHash Hash
	Index  uint32
}

func (o OutPoint) String() string {
	return fmt.Sprintf("%s:%d", o.TxHash, o.Index)
}

func (o OutPoint) bytes() []byte {
	bz := make([]byte, HashSize+4)
	copy(bz, o.TxHash[:])
	binary.LittleEndian.PutUint32(bz[HashSize:], o.Index)
	return bz
}

// CellInput consumes a live cell.
type CellInput struct {
	PreviousOutput OutPoint
	Since          uint64
}

// CellOutput creates a cell. Capacity is denominated in the ledger's base
// unit and must cover the cell's own byte weight.
type CellOutput struct {
	Capacity uint64
	Lock     Script
	Type     *Script
}

// CellInfo is a live cell as fetched from the indexer: where it lives, its
// output header and its data.
type CellInfo struct {
	OutPoint OutPoint
	Output   CellOutput
	Data     []byte
}

// UpdateCells is the fetched snapshot of a ring-buffer family consumed by an
// update transaction: the slot currently furthest behind (next to be
// overwritten), the slot most recently written, and the metadata cell.
type UpdateCells struct {
	Oldest CellInfo
	Latest CellInfo
	Info   CellInfo
}

// Transaction is an unsigned (until witnesses are filled) ledger
// transaction. The transport wire encoding is an external concern; this
// model is what the assembler and the signer operate on.
type Transaction struct {
	Version     uint32
	CellDeps    []OutPoint
	HeaderDeps  []Hash
	Inputs      []CellInput
	Outputs     []CellOutput
	OutputsData [][]byte
	Witnesses   [][]byte
}

// Hash computes the transaction's identifying digest. Witnesses are
// excluded so the digest is stable across signing.
func (tx *Transaction) Hash() Hash {
	var bz []byte
	bz = appendUint32(bz, tx.Version)
	bz = appendUint32(bz, uint32(len(tx.CellDeps)))
	for _, dep := range tx.CellDeps {
		bz = append(bz, dep.bytes()...)
	}
	bz = appendUint32(bz, uint32(len(tx.HeaderDeps)))
	for _, hd := range tx.HeaderDeps {
		bz = append(bz, hd[:]...)
	}
	bz = appendUint32(bz, uint32(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		bz = append(bz, in.PreviousOutput.bytes()...)
		bz = appendUint64(bz, in.Since)
	}
	bz = appendUint32(bz, uint32(len(tx.Outputs)))
	for i, out := range tx.Outputs {
		bz = appendUint64(bz, out.Capacity)
		lockHash := out.Lock.Hash()
		bz = append(bz, lockHash[:]...)
		if out.Type != nil {
			typeHash := out.Type.Hash()
			bz = append(bz, typeHash[:]...)
		}
		bz = appendUint32(bz, uint32(len(tx.OutputsData[i])))
		bz = append(bz, tx.OutputsData[i]...)
	}
	return LedgerHash(bz)
}

// InputCapacity sums the capacity of the given consumed outputs.
func InputCapacity(consumed []CellOutput) uint64 {
	var total uint64
	for _, out := range consumed {
		total += out.Capacity
	}
	return total
}

// OutputCapacity sums the transaction's created capacity.
func (tx *Transaction) OutputCapacity() uint64 {
	var total uint64
	for _, out := range tx.Outputs {
		total += out.Capacity
	}
	return total
}

func appendUint32(bz []byte, v uint32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	return append(bz, buf[:]...)
}

func appendUint64(bz []byte, v uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return append(bz, buf[:]...)
}
