package db

import (
	"fmt"
	"regexp"
	"strconv"
	"sync"

	dbm "github.com/tendermint/tm-db"
	merkletree "github.com/wealdtech/go-merkletree"

	"github.com/lightring/lightring/store"
	"github.com/lightring/lightring/types"
)

type dbs struct {
	db     dbm.DB
	prefix string

	mtx sync.RWMutex
}

// New returns a Store that wraps any DB (with an optional prefix in case you
// want to use one DB for many source chains).
func New(db dbm.DB, prefix string) store.Store {
	return &dbs{db: db, prefix: prefix}
}

// SaveHeader persists a header update to the db.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) SaveHeader(update *types.HeaderUpdate) error {
	if err := update.ValidateBasic(); err != nil {
		return fmt.Errorf("invalid header update: %w", err)
	}

	bz, err := update.MarshalBinary()
	if err != nil {
		return fmt.Errorf("marshaling header update: %w", err)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	tip, err := s.tipSlot()
	if err != nil {
		return err
	}
	if tip != nil && update.Slot != *tip+1 {
		return fmt.Errorf("update slot %d does not extend tip %d", update.Slot, *tip)
	}

	return s.db.SetSync(s.huKey(update.Slot), bz)
}

// Header loads the header update at the given slot.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) Header(slot types.Slot) (*types.HeaderUpdate, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.header(slot)
}

func (s *dbs) header(slot types.Slot) (*types.HeaderUpdate, error) {
	bz, err := s.db.Get(s.huKey(slot))
	if err != nil {
		return nil, err
	}
	if len(bz) == 0 {
		return nil, store.ErrHeaderNotFound
	}

	update := new(types.HeaderUpdate)
	if err := update.UnmarshalBinary(bz); err != nil {
		return nil, err
	}
	return update, nil
}

// BaseSlot returns the first stored slot, or nil for an empty store.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) BaseSlot() (*types.Slot, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.baseSlot()
}

func (s *dbs) baseSlot() (*types.Slot, error) {
	itr, err := s.db.Iterator(s.huKey(0), s.keyUpperBound())
	if err != nil {
		return nil, err
	}
	defer itr.Close()

	for ; itr.Valid(); itr.Next() {
		if slot, ok := s.parseHuKey(itr.Key()); ok {
			return &slot, nil
		}
	}
	return nil, itr.Error()
}

// TipSlot returns the last stored slot, or nil for an empty store.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) TipSlot() (*types.Slot, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return s.tipSlot()
}

func (s *dbs) tipSlot() (*types.Slot, error) {
	itr, err := s.db.ReverseIterator(s.huKey(0), s.keyUpperBound())
	if err != nil {
		return nil, err
	}
	defer itr.Close()

	for ; itr.Valid(); itr.Next() {
		if slot, ok := s.parseHuKey(itr.Key()); ok {
			return &slot, nil
		}
	}
	return nil, itr.Error()
}

// RollbackTo deletes every update stored after the given slot; nil rolls
// back to empty. Rolling back to the current tip, or on an empty store,
// changes nothing.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) RollbackTo(slot *types.Slot) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	var start []byte
	if slot != nil {
		start = s.huKey(*slot + 1)
	} else {
		start = s.huKey(0)
	}

	itr, err := s.db.Iterator(start, s.keyUpperBound())
	if err != nil {
		return err
	}

	b := s.db.NewBatch()
	defer b.Close()

	for ; itr.Valid(); itr.Next() {
		if _, ok := s.parseHuKey(itr.Key()); ok {
			if err := b.Delete(itr.Key()); err != nil {
				itr.Close()
				return err
			}
		}
	}
	if err := itr.Error(); err != nil {
		itr.Close()
		return err
	}
	itr.Close()

	return b.WriteSync()
}

// MerkleRoot builds the proof index over the current window and returns its
// root.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) MerkleRoot() (types.Hash, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	tree, _, err := s.windowTree()
	if err != nil {
		return types.Hash{}, err
	}
	return types.HashFromBytes(tree.Root())
}

// GenerateProof returns an inclusion proof for the update at the given slot
// against the current window root.
//
// Safe for concurrent use by multiple goroutines.
func (s *dbs) GenerateProof(slot types.Slot) (*store.HeaderProof, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	update, err := s.header(slot)
	if err != nil {
		return nil, err
	}

	tree, _, err := s.windowTree()
	if err != nil {
		return nil, err
	}
	proof, err := tree.GenerateProof(store.LeafBytes(update))
	if err != nil {
		return nil, err
	}
	root, err := types.HashFromBytes(tree.Root())
	if err != nil {
		return nil, err
	}

	return &store.HeaderProof{Slot: slot, Root: root, Proof: proof}, nil
}

// windowTree loads every stored update and builds the Merkle tree over the
// window. Rebuilt on demand; the window is bounded by ring rotation so this
// stays cheap.
func (s *dbs) windowTree() (*merkletree.MerkleTree, int, error) {
	itr, err := s.db.Iterator(s.huKey(0), s.keyUpperBound())
	if err != nil {
		return nil, 0, err
	}
	defer itr.Close()

	var leaves [][]byte
	for ; itr.Valid(); itr.Next() {
		if _, ok := s.parseHuKey(itr.Key()); !ok {
			continue
		}
		update := new(types.HeaderUpdate)
		if err := update.UnmarshalBinary(itr.Value()); err != nil {
			return nil, 0, err
		}
		leaves = append(leaves, store.LeafBytes(update))
	}
	if err := itr.Error(); err != nil {
		return nil, 0, err
	}
	if len(leaves) == 0 {
		return nil, 0, store.ErrEmptyStore
	}

	tree, err := merkletree.New(leaves)
	if err != nil {
		return nil, 0, err
	}
	return tree, len(leaves), nil
}

func (s *dbs) huKey(slot types.Slot) []byte {
	return []byte(fmt.Sprintf("hu/%s/%020d", s.prefix, slot))
}

func (s *dbs) keyUpperBound() []byte {
	return []byte(fmt.Sprintf("hu/%s/~", s.prefix))
}

var keyPattern = regexp.MustCompile(`^hu/([^/]*)/([0-9]+)$`)

func (s *dbs) parseHuKey(key []byte) (slot types.Slot, ok bool) {
	submatch := keyPattern.FindSubmatch(key)
	if submatch == nil {
		return 0, false
	}
	if string(submatch[1]) != s.prefix {
		return 0, false
	}
	slot, err := strconv.ParseUint(string(submatch[2]), 10, 64)
	if err != nil {
		return 0, false
	}
	return slot, true
}
