// Package keyring holds the signing keys the chain driver submits
// transactions with. Only the contract the driver relies on lives here:
// named key lookup, address derivation and recoverable signing.
package keyring

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrKeyNotFound is returned when the named key is absent from the ring.
var ErrKeyNotFound = errors.New("key not found")

// KeyRing resolves named signing keys.
type KeyRing interface {
	// GetKey returns the key stored under name, or ErrKeyNotFound.
	GetKey(name string) (*KeyPair, error)
}

// MemoryKeyRing is an in-memory key ring, used in tests and for ephemeral
// setups.
type MemoryKeyRing struct {
	mtx  sync.RWMutex
	keys map[string]*KeyPair
}

// NewMemoryKeyRing returns an empty in-memory ring.
func NewMemoryKeyRing() *MemoryKeyRing {
	return &MemoryKeyRing{keys: make(map[string]*KeyPair)}
}

// AddKey stores a key under the given name, replacing any previous one.
func (r *MemoryKeyRing) AddKey(name string, key *KeyPair) {
	r.mtx.Lock()
	defer r.mtx.Unlock()
	r.keys[name] = key
}

func (r *MemoryKeyRing) GetKey(name string) (*KeyPair, error) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()
	key, ok := r.keys[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrKeyNotFound)
	}
	return key, nil
}

// DirKeyRing reads hex-encoded secret keys from <dir>/<name>.key files.
type DirKeyRing struct {
	dir string
}

// NewDirKeyRing returns a ring backed by key files under dir.
func NewDirKeyRing(dir string) *DirKeyRing {
	return &DirKeyRing{dir: dir}
}

func (r *DirKeyRing) GetKey(name string) (*KeyPair, error) {
	path := filepath.Join(r.dir, name+".key")
	bz, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%q: %w", name, ErrKeyNotFound)
		}
		return nil, fmt.Errorf("reading key file %s: %w", path, err)
	}
	raw, err := hex.DecodeString(strings.TrimSpace(string(bz)))
	if err != nil {
		return nil, fmt.Errorf("decoding key file %s: %w", path, err)
	}
	return KeyPairFromBytes(raw)
}
