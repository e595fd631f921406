package light

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightring/lightring/types"
)

func mkBatch(from, to types.Slot) []*types.HeaderUpdate {
	var updates []*types.HeaderUpdate
	for s := from; s <= to; s++ {
		updates = append(updates, &types.HeaderUpdate{
			Slot:        s,
			HeaderRoot:  types.LedgerHash([]byte{byte(s)}),
			Attestation: []byte{0x01},
		})
	}
	return updates
}

func TestAlignUpdates_Bootstrap(t *testing.T) {
	updates := mkBatch(100, 110)
	aligned, err := alignUpdates("test-chain", updates, nil)
	require.NoError(t, err)
	assert.Equal(t, updates, aligned)
}

func TestAlignUpdates_TrimsCoveredPrefix(t *testing.T) {
	onchain := &types.Client{MinimalSlot: 80, MaximalSlot: 104}

	aligned, err := alignUpdates("test-chain", mkBatch(100, 110), onchain)
	require.NoError(t, err)
	require.Len(t, aligned, 6)
	assert.EqualValues(t, 105, aligned[0].Slot)
	assert.EqualValues(t, 110, aligned[5].Slot)
}

func TestAlignUpdates_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		updates []*types.HeaderUpdate
		onchain *types.Client
		reason  string
	}{
		{
			name:   "empty batch",
			reason: "empty update batch",
		},
		{
			name:    "gapped batch",
			updates: append(mkBatch(100, 102), mkBatch(104, 106)...),
			reason:  "gap",
		},
		{
			name:    "batch fully covered",
			updates: mkBatch(100, 110),
			onchain: &types.Client{MinimalSlot: 80, MaximalSlot: 115},
			reason:  "already covers",
		},
		{
			name:    "batch ahead of frontier",
			updates: mkBatch(100, 110),
			onchain: &types.Client{MinimalSlot: 50, MaximalSlot: 90},
			reason:  "frontier",
		},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := alignUpdates("test-chain", tc.updates, tc.onchain)
			require.Error(t, err)
			var alignErr ErrAlignment
			require.ErrorAs(t, err, &alignErr)
			assert.Equal(t, "test-chain", alignErr.ChainID)
			assert.Contains(t, err.Error(), tc.reason)
		})
	}
}
