package light

import (
	"fmt"

	"github.com/lightring/lightring/types"
)

// alignUpdates reconciles a batch of freshly fetched native header updates
// against the chain's last known client record before any verification
// runs: updates whose slots are already covered on-chain are dropped, and
// the trimmed batch must line up exactly with the on-chain frontier.
//
// The returned slice shares the batch's backing array. The local proof
// store is not touched.
func alignUpdates(chainID string, updates []*types.HeaderUpdate, onchain *types.Client) ([]*types.HeaderUpdate, error) {
	if len(updates) == 0 {
		return nil, ErrAlignment{ChainID: chainID, Reason: "empty update batch"}
	}

	for i := 1; i < len(updates); i++ {
		if updates[i].Slot != updates[i-1].Slot+1 {
			return nil, ErrAlignment{
				ChainID: chainID,
				Reason: fmt.Sprintf("native batch has a gap between slots %d and %d",
					updates[i-1].Slot, updates[i].Slot),
			}
		}
	}

	if onchain == nil {
		return updates, nil
	}

	// Drop everything the chain already attests to.
	frontier := onchain.MaximalSlot
	trimmed := updates
	for len(trimmed) > 0 && trimmed[0].Slot <= frontier {
		trimmed = trimmed[1:]
	}

	if len(trimmed) == 0 {
		return nil, ErrAlignment{
			ChainID: chainID,
			Reason:  fmt.Sprintf("on-chain state (slot %d) already covers the whole batch", frontier),
		}
	}
	if trimmed[0].Slot != frontier+1 {
		return nil, ErrAlignment{
			ChainID: chainID,
			Reason: fmt.Sprintf("native batch starts at slot %d, on-chain frontier is %d",
				trimmed[0].Slot, frontier),
		}
	}
	return trimmed, nil
}
