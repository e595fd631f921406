package keyring

import (
	"encoding/hex"

	"github.com/lightring/lightring/types"
)

// Network is the ledger network an address belongs to.
type Network byte

const (
	NetworkMainnet Network = iota
	NetworkTestnet
	NetworkDevnet
)

func (n Network) String() string {
	switch n {
	case NetworkMainnet:
		return "mainnet"
	case NetworkTestnet:
		return "testnet"
	default:
		return "devnet"
	}
}

func (n Network) prefix() string {
	switch n {
	case NetworkMainnet:
		return "lr"
	case NetworkTestnet:
		return "lt"
	default:
		return "ld"
	}
}

// SecpLockCodeHash identifies the ledger's standard sighash-all lock script.
var SecpLockCodeHash = types.LedgerHash([]byte("secp256k1-sighash-all"))

// Address is a fee-payer address: the network plus the truncated digest of
// the compressed public key.
type Address struct {
	Network    Network
	PubKeyHash [20]byte
}

// LockScript returns the sighash lock guarding cells owned by this address.
func (a Address) LockScript() types.Script {
	return types.Script{
		CodeHash: SecpLockCodeHash,
		HashType: types.HashTypeType,
		Args:     a.PubKeyHash[:],
	}
}

func (a Address) String() string {
	return a.Network.prefix() + "1" + hex.EncodeToString(a.PubKeyHash[:])
}
