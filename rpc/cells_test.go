package rpc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightring/lightring/rpc"
	"github.com/lightring/lightring/types"
)

func mkFamilyCells(t *testing.T, cellsCount, lastID uint8) []types.CellInfo {
	t.Helper()

	var cells []types.CellInfo
	ringSize := cellsCount - 1
	for id := uint8(0); id < ringSize; id++ {
		c := &types.Client{
			ID:            id,
			MinimalSlot:   types.Slot(100 * uint64(id+1)),
			MaximalSlot:   types.Slot(100*uint64(id+1) + 20),
			TipHeaderRoot: types.LedgerHash([]byte{id}),
		}
		data, err := c.MarshalBinary()
		require.NoError(t, err)
		cells = append(cells, types.CellInfo{
			OutPoint: types.OutPoint{TxHash: types.LedgerHash([]byte{0x10, id})},
			Data:     data,
		})
	}
	info := &types.ClientInfo{LastID: lastID, MinimalUpdatesCount: 10}
	infoData, err := info.MarshalBinary()
	require.NoError(t, err)
	cells = append(cells, types.CellInfo{
		OutPoint: types.OutPoint{TxHash: types.LedgerHash([]byte{0x20})},
		Data:     infoData,
	})
	return cells
}

func TestParseFamilyCells(t *testing.T) {
	clients, info, err := rpc.ParseFamilyCells(mkFamilyCells(t, 5, 1), 5)
	require.NoError(t, err)
	require.Len(t, clients, 4)
	require.NotNil(t, info)
	assert.EqualValues(t, 1, info.LastID)
	assert.EqualValues(t, 10, info.MinimalUpdatesCount)
}

func TestParseFamilyCells_Errors(t *testing.T) {
	t.Run("missing info cell", func(t *testing.T) {
		cells := mkFamilyCells(t, 5, 1)
		_, _, err := rpc.ParseFamilyCells(cells[:4], 5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no info cell")
	})

	t.Run("wrong client count", func(t *testing.T) {
		_, _, err := rpc.ParseFamilyCells(mkFamilyCells(t, 5, 1), 6)
		require.Error(t, err)
	})

	t.Run("stray data", func(t *testing.T) {
		cells := mkFamilyCells(t, 5, 1)
		cells[0].Data = []byte{0x01, 0x02, 0x03}
		_, _, err := rpc.ParseFamilyCells(cells, 5)
		require.Error(t, err)
	})
}

func TestSelectUpdateCells(t *testing.T) {
	testCases := []struct {
		lastID, wantOldest uint8
	}{
		{0, 1},
		{1, 2},
		{2, 3},
		{3, 0}, // wraps around the ring
	}
	for _, tc := range testCases {
		cells := mkFamilyCells(t, 5, tc.lastID)
		update, err := rpc.SelectUpdateCells(cells, 5)
		require.NoError(t, err)

		latest := new(types.Client)
		require.NoError(t, latest.UnmarshalBinary(update.Latest.Data))
		assert.Equal(t, tc.lastID, latest.ID)

		oldest := new(types.Client)
		require.NoError(t, oldest.UnmarshalBinary(update.Oldest.Data))
		assert.Equal(t, tc.wantOldest, oldest.ID)

		info := new(types.ClientInfo)
		require.NoError(t, info.UnmarshalBinary(update.Info.Data))
		assert.Equal(t, tc.lastID, info.LastID)
	}
}

func TestSelectUpdateCells_BadLastID(t *testing.T) {
	cells := mkFamilyCells(t, 5, 9)
	_, err := rpc.SelectUpdateCells(cells, 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside ring")
}
