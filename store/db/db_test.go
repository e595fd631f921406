package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tm-db"
	"pgregory.net/rapid"

	"github.com/lightring/lightring/store"
	"github.com/lightring/lightring/types"
)

func mkUpdate(slot types.Slot) *types.HeaderUpdate {
	return &types.HeaderUpdate{
		Slot:        slot,
		HeaderRoot:  types.LedgerHash([]byte{byte(slot), byte(slot >> 8)}),
		Attestation: []byte("attestation"),
	}
}

func fill(t *testing.T, s store.Store, from, to types.Slot) {
	t.Helper()
	for slot := from; slot <= to; slot++ {
		require.NoError(t, s.SaveHeader(mkUpdate(slot)))
	}
}

func TestBase_TipSlot(t *testing.T) {
	s := New(dbm.NewMemDB(), "TestBase_TipSlot")

	// Empty store
	base, err := s.BaseSlot()
	require.NoError(t, err)
	assert.Nil(t, base)

	tip, err := s.TipSlot()
	require.NoError(t, err)
	assert.Nil(t, tip)

	fill(t, s, 100, 105)

	base, err = s.BaseSlot()
	require.NoError(t, err)
	require.NotNil(t, base)
	assert.EqualValues(t, 100, *base)

	tip, err = s.TipSlot()
	require.NoError(t, err)
	require.NotNil(t, tip)
	assert.EqualValues(t, 105, *tip)
}

func TestSaveHeader_Contiguity(t *testing.T) {
	s := New(dbm.NewMemDB(), "TestSaveHeader_Contiguity")

	fill(t, s, 10, 12)

	// gap
	err := s.SaveHeader(mkUpdate(14))
	require.Error(t, err)

	// duplicate of the tip
	err = s.SaveHeader(mkUpdate(12))
	require.Error(t, err)

	// extends the tip
	require.NoError(t, s.SaveHeader(mkUpdate(13)))

	h, err := s.Header(13)
	require.NoError(t, err)
	assert.EqualValues(t, 13, h.Slot)
}

func TestHeader_NotFound(t *testing.T) {
	s := New(dbm.NewMemDB(), "TestHeader_NotFound")

	_, err := s.Header(7)
	require.ErrorIs(t, err, store.ErrHeaderNotFound)

	fill(t, s, 7, 7)

	h, err := s.Header(7)
	require.NoError(t, err)
	assert.Equal(t, mkUpdate(7).HeaderRoot, h.HeaderRoot)
}

func TestRollbackTo(t *testing.T) {
	s := New(dbm.NewMemDB(), "TestRollbackTo")

	// Rolling back an empty store is a no-op.
	require.NoError(t, s.RollbackTo(nil))
	slot := types.Slot(5)
	require.NoError(t, s.RollbackTo(&slot))

	fill(t, s, 100, 110)

	// Rolling back to the current tip is a no-op.
	tip := types.Slot(110)
	require.NoError(t, s.RollbackTo(&tip))
	got, err := s.TipSlot()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.EqualValues(t, 110, *got)

	// Discard a suffix.
	target := types.Slot(104)
	require.NoError(t, s.RollbackTo(&target))
	got, err = s.TipSlot()
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.EqualValues(t, 104, *got)

	_, err = s.Header(105)
	require.ErrorIs(t, err, store.ErrHeaderNotFound)

	// The base is untouched.
	base, err := s.BaseSlot()
	require.NoError(t, err)
	require.NotNil(t, base)
	assert.EqualValues(t, 100, *base)

	// Nil rolls back to empty.
	require.NoError(t, s.RollbackTo(nil))
	got, err = s.TipSlot()
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRollbackTo_Idempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := New(dbm.NewMemDB(), "TestRollbackTo_Idempotent")

		base := rapid.Uint64Range(0, 1000).Draw(t, "base").(uint64)
		n := rapid.Uint64Range(1, 30).Draw(t, "n").(uint64)
		for slot := base; slot < base+n; slot++ {
			if err := s.SaveHeader(mkUpdate(slot)); err != nil {
				t.Fatal(err)
			}
		}

		tip, err := s.TipSlot()
		if err != nil || tip == nil {
			t.Fatalf("tip: %v %v", tip, err)
		}

		// Rolling back to the tip any number of times changes nothing.
		times := rapid.IntRange(1, 4).Draw(t, "times").(int)
		for i := 0; i < times; i++ {
			if err := s.RollbackTo(tip); err != nil {
				t.Fatal(err)
			}
		}

		got, err := s.TipSlot()
		if err != nil || got == nil || *got != *tip {
			t.Fatalf("tip changed: %v -> %v (%v)", *tip, got, err)
		}
	})
}

func TestMerkleRoot_GenerateProof(t *testing.T) {
	s := New(dbm.NewMemDB(), "TestMerkleRoot_GenerateProof")

	_, err := s.MerkleRoot()
	require.ErrorIs(t, err, store.ErrEmptyStore)

	fill(t, s, 50, 57)

	root, err := s.MerkleRoot()
	require.NoError(t, err)
	assert.False(t, root.IsZero())

	proof, err := s.GenerateProof(53)
	require.NoError(t, err)
	assert.Equal(t, root, proof.Root)

	ok, err := proof.Verify(mkUpdate(53))
	require.NoError(t, err)
	assert.True(t, ok)

	// Proof is bound to its slot.
	ok, err = proof.Verify(mkUpdate(54))
	require.NoError(t, err)
	assert.False(t, ok)

	// The root moves when the window grows.
	require.NoError(t, s.SaveHeader(mkUpdate(58)))
	root2, err := s.MerkleRoot()
	require.NoError(t, err)
	assert.NotEqual(t, root, root2)
}
