package types

import (
	"bytes"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// HashSize is the size of a ledger hash in bytes.
const HashSize = 32

// Hash is a 32-byte ledger digest (cell data hashes, transaction hashes,
// script hashes, type ids).
type Hash [HashSize]byte

// ledger hashes are domain-separated from plain blake2b-256.
var hashPersonal = []byte("lightring-hash")

// LedgerHash computes the blake2b-256 digest of the concatenation of chunks
// under the ledger hash domain.
func LedgerHash(chunks ...[]byte) Hash {
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	h.Write(hashPersonal)
	for _, c := range chunks {
		h.Write(c)
	}
	var out Hash
	copy(out[:], h.Sum(nil))
	return out
}

// HashFromBytes converts a 32-byte slice into a Hash.
func HashFromBytes(bz []byte) (Hash, error) {
	var h Hash
	if len(bz) != HashSize {
		return h, fmt.Errorf("expected %d bytes, got %d", HashSize, len(bz))
	}
	copy(h[:], bz)
	return h, nil
}

// HashFromHex parses a hex string (with or without 0x prefix) into a Hash.
func HashFromHex(s string) (Hash, error) {
	if len(s) >= 2 && s[0:2] == "0x" {
		s = s[2:]
	}
	bz, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, err
	}
	return HashFromBytes(bz)
}

func (h Hash) Bytes() []byte { return h[:] }

func (h Hash) IsZero() bool { return h == Hash{} }

func (h Hash) Equal(other Hash) bool { return bytes.Equal(h[:], other[:]) }

func (h Hash) String() string { return "0x" + hex.EncodeToString(h[:]) }
