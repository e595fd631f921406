package keyring

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec"

	"github.com/lightring/lightring/types"
)

// KeyPair is a secp256k1 signing key and its public counterpart.
type KeyPair struct {
	priv *btcec.PrivateKey
	pub  *btcec.PublicKey
}

// NewKeyPair generates a fresh random key pair.
func NewKeyPair() (*KeyPair, error) {
	priv, err := btcec.NewPrivateKey(btcec.S256())
	if err != nil {
		return nil, err
	}
	return &KeyPair{priv: priv, pub: priv.PubKey()}, nil
}

// KeyPairFromBytes restores a key pair from a 32-byte secret.
func KeyPairFromBytes(bz []byte) (*KeyPair, error) {
	if len(bz) != 32 {
		return nil, fmt.Errorf("secret key must be 32 bytes, got %d", len(bz))
	}
	priv, pub := btcec.PrivKeyFromBytes(btcec.S256(), bz)
	return &KeyPair{priv: priv, pub: pub}, nil
}

// PrivKeyBytes returns the 32-byte secret key.
func (k *KeyPair) PrivKeyBytes() []byte {
	return k.priv.Serialize()
}

// PubKeyBytes returns the compressed public key.
func (k *KeyPair) PubKeyBytes() []byte {
	return k.pub.SerializeCompressed()
}

// Address derives the key's fee-payer address on the given network.
func (k *KeyPair) Address(network Network) Address {
	digest := types.LedgerHash(k.PubKeyBytes())
	var h [20]byte
	copy(h[:], digest[:20])
	return Address{Network: network, PubKeyHash: h}
}

// SignRecoverable signs a 32-byte digest and returns a 65-byte recoverable
// signature in r || s || recovery_id form, as the ledger's sighash lock
// expects.
func (k *KeyPair) SignRecoverable(digest types.Hash) ([]byte, error) {
	compact, err := btcec.SignCompact(btcec.S256(), k.priv, digest[:], true)
	if err != nil {
		return nil, err
	}
	// btcec puts the header byte first; the ledger wants it last.
	sig := make([]byte, 65)
	copy(sig, compact[1:])
	sig[64] = compact[0] - 27 - 4
	return sig, nil
}

// VerifyRecoverable checks a 65-byte recoverable signature against a digest
// and this key's public key.
func (k *KeyPair) VerifyRecoverable(digest types.Hash, sig []byte) bool {
	if len(sig) != 65 {
		return false
	}
	compact := make([]byte, 65)
	compact[0] = sig[64] + 27 + 4
	copy(compact[1:], sig[:64])
	pub, _, err := btcec.RecoverCompact(btcec.S256(), compact, digest[:])
	if err != nil {
		return false
	}
	return pub.IsEqual(k.pub)
}
