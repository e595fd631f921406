package verifier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tm-db"

	dbs "github.com/lightring/lightring/store/db"
	"github.com/lightring/lightring/types"
	"github.com/lightring/lightring/verifier"
)

const chainID = "test-chain"

func mkUpdate(slot types.Slot) *types.HeaderUpdate {
	return &types.HeaderUpdate{
		Slot:        slot,
		HeaderRoot:  types.LedgerHash([]byte("header"), []byte{byte(slot)}),
		Attestation: []byte{0xaa, byte(slot)},
	}
}

func batch(from, to types.Slot) []*types.HeaderUpdate {
	var updates []*types.HeaderUpdate
	for s := from; s <= to; s++ {
		updates = append(updates, mkUpdate(s))
	}
	return updates
}

func TestAggregate_Bootstrap(t *testing.T) {
	st := dbs.New(dbm.NewMemDB(), chainID)
	v := verifier.New()

	updates := batch(100, 104)
	client, proof, err := v.Aggregate(chainID, updates, st, nil)
	require.NoError(t, err)

	assert.EqualValues(t, 100, client.MinimalSlot)
	assert.EqualValues(t, 104, client.MaximalSlot)
	assert.Equal(t, updates[4].HeaderRoot, client.TipHeaderRoot)

	assert.Equal(t, types.Hash{}, proof.PrevTipRoot)
	assert.Equal(t, updates[4].HeaderRoot, proof.NewTipRoot)
	assert.Len(t, proof.Items, 5)
}

func TestAggregate_Continuation(t *testing.T) {
	st := dbs.New(dbm.NewMemDB(), chainID)
	for _, u := range batch(100, 120) {
		require.NoError(t, st.SaveHeader(u))
	}
	onchain := &types.Client{
		ID:            1,
		MinimalSlot:   100,
		MaximalSlot:   120,
		TipHeaderRoot: mkUpdate(120).HeaderRoot,
	}

	client, proof, err := verifier.New().Aggregate(chainID, batch(121, 130), st, onchain)
	require.NoError(t, err)

	assert.EqualValues(t, 121, client.MinimalSlot)
	assert.EqualValues(t, 130, client.MaximalSlot)
	assert.Equal(t, onchain.TipHeaderRoot, proof.PrevTipRoot)
	assert.Len(t, proof.Items, 10)
}

func TestAggregate_RejectsGappedBatch(t *testing.T) {
	st := dbs.New(dbm.NewMemDB(), chainID)
	updates := []*types.HeaderUpdate{mkUpdate(100), mkUpdate(102)}

	_, _, err := verifier.New().Aggregate(chainID, updates, st, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gap")
}

func TestAggregate_RejectsEmptyBatch(t *testing.T) {
	st := dbs.New(dbm.NewMemDB(), chainID)
	_, _, err := verifier.New().Aggregate(chainID, nil, st, nil)
	require.Error(t, err)
}

func TestAggregate_RejectsNonAdjacentBatch(t *testing.T) {
	st := dbs.New(dbm.NewMemDB(), chainID)
	for _, u := range batch(100, 120) {
		require.NoError(t, st.SaveHeader(u))
	}
	onchain := &types.Client{MinimalSlot: 100, MaximalSlot: 120, TipHeaderRoot: mkUpdate(120).HeaderRoot}

	// A hole between the prior frontier and the batch.
	_, _, err := verifier.New().Aggregate(chainID, batch(125, 130), st, onchain)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prior client ends at 120")
}

func TestAggregate_RejectsStoreChainDisagreement(t *testing.T) {
	onchain := &types.Client{MinimalSlot: 100, MaximalSlot: 120, TipHeaderRoot: mkUpdate(120).HeaderRoot}
	v := verifier.New()

	t.Run("empty store", func(t *testing.T) {
		st := dbs.New(dbm.NewMemDB(), chainID)
		_, _, err := v.Aggregate(chainID, batch(121, 125), st, onchain)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "resynchronize")
	})

	t.Run("stale store tip", func(t *testing.T) {
		st := dbs.New(dbm.NewMemDB(), chainID)
		for _, u := range batch(100, 110) {
			require.NoError(t, st.SaveHeader(u))
		}
		_, _, err := v.Aggregate(chainID, batch(121, 125), st, onchain)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "resynchronize")
	})
}

func TestAggregate_ItemsChainFromPriorTip(t *testing.T) {
	st := dbs.New(dbm.NewMemDB(), chainID)
	for _, u := range batch(100, 120) {
		require.NoError(t, st.SaveHeader(u))
	}
	onchain := &types.Client{MinimalSlot: 100, MaximalSlot: 120, TipHeaderRoot: mkUpdate(120).HeaderRoot}
	other := &types.Client{MinimalSlot: 100, MaximalSlot: 120, TipHeaderRoot: types.LedgerHash([]byte("fork"))}

	v := verifier.New()
	_, p1, err := v.Aggregate(chainID, batch(121, 125), st, onchain)
	require.NoError(t, err)
	_, p2, err := v.Aggregate(chainID, batch(121, 125), st, other)
	require.NoError(t, err)

	// Same updates, different predecessor: the linkage must differ from
	// the first item on.
	assert.NotEqual(t, p1.Items[0], p2.Items[0])
}
