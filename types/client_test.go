package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientValidateBasic(t *testing.T) {
	valid := Client{ID: 1, MinimalSlot: 100, MaximalSlot: 120, TipHeaderRoot: LedgerHash([]byte("tip"))}
	require.NoError(t, valid.ValidateBasic())

	inverted := valid
	inverted.MinimalSlot, inverted.MaximalSlot = 120, 100
	require.Error(t, inverted.ValidateBasic())

	noRoot := valid
	noRoot.TipHeaderRoot = Hash{}
	require.Error(t, noRoot.ValidateBasic())
}

func TestClientCodec(t *testing.T) {
	c := Client{ID: 3, MinimalSlot: 100, MaximalSlot: 1 << 40, TipHeaderRoot: LedgerHash([]byte("tip"))}
	bz, err := c.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, bz, ClientSize)

	got := new(Client)
	require.NoError(t, got.UnmarshalBinary(bz))
	assert.Equal(t, &c, got)

	require.Error(t, got.UnmarshalBinary(bz[:ClientSize-1]))
}

func TestClientWithID(t *testing.T) {
	c := &Client{ID: 0, MinimalSlot: 100, MaximalSlot: 120, TipHeaderRoot: LedgerHash([]byte("tip"))}
	tagged := c.WithID(3)
	assert.EqualValues(t, 3, tagged.ID)
	// The receiver is left alone.
	assert.EqualValues(t, 0, c.ID)
	assert.Equal(t, c.MinimalSlot, tagged.MinimalSlot)
}

func TestClientTypeArgsValidateBasic(t *testing.T) {
	valid := ClientTypeArgs{TypeID: LedgerHash([]byte("id")), CellsCount: MinCellsCount}
	require.NoError(t, valid.ValidateBasic())

	tooFew := valid
	tooFew.CellsCount = MinCellsCount - 1
	require.Error(t, tooFew.ValidateBasic())
}

func TestHeaderUpdateValidateBasic(t *testing.T) {
	valid := HeaderUpdate{Slot: 100, HeaderRoot: LedgerHash([]byte("h")), Attestation: []byte{0x01}}
	require.NoError(t, valid.ValidateBasic())

	noRoot := valid
	noRoot.HeaderRoot = Hash{}
	require.Error(t, noRoot.ValidateBasic())

	noAttestation := valid
	noAttestation.Attestation = nil
	require.Error(t, noAttestation.ValidateBasic())
}

func TestAnyClientState(t *testing.T) {
	update := &HeaderUpdate{Slot: 120, HeaderRoot: LedgerHash([]byte("h")), Attestation: []byte{0x01}}
	eth := NewEthClientState(&EthClientState{ChainID: "eth-mainnet", LightClientUpdate: update})
	require.NoError(t, eth.ValidateBasic())
	assert.Equal(t, "eth-mainnet", eth.ChainID())
	assert.EqualValues(t, 120, eth.LatestSlot())

	ckb := NewCkbClientState(&CkbClientState{ChainID: "ckb-dev"})
	require.NoError(t, ckb.ValidateBasic())
	assert.Equal(t, "ckb-dev", ckb.ChainID())
	assert.EqualValues(t, 0, ckb.LatestSlot())

	mistagged := AnyClientState{Kind: ClientKindEth}
	require.Error(t, mistagged.ValidateBasic())
}
