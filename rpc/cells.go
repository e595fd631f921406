package rpc

import (
	"errors"
	"fmt"

	"github.com/lightring/lightring/types"
)

// ParseFamilyCells splits the live cells of one ring-buffer family into its
// decoded client records and metadata record. The family must carry exactly
// cellsCount-1 client cells and one info cell.
func ParseFamilyCells(cells []types.CellInfo, cellsCount uint8) ([]*types.Client, *types.ClientInfo, error) {
	var (
		clients []*types.Client
		info    *types.ClientInfo
	)
	for _, cell := range cells {
		switch len(cell.Data) {
		case types.ClientSize:
			c := new(types.Client)
			if err := c.UnmarshalBinary(cell.Data); err != nil {
				return nil, nil, err
			}
			clients = append(clients, c)
		case types.ClientInfoSize:
			if info != nil {
				return nil, nil, errors.New("multiple info cells in one family")
			}
			info = new(types.ClientInfo)
			if err := info.UnmarshalBinary(cell.Data); err != nil {
				return nil, nil, err
			}
		default:
			return nil, nil, fmt.Errorf("cell %s carries %d bytes of data, expected a client or info record",
				cell.OutPoint, len(cell.Data))
		}
	}
	if info == nil {
		return nil, nil, errors.New("no info cell in family")
	}
	if len(clients) != int(cellsCount)-1 {
		return nil, nil, fmt.Errorf("family has %d client cells, configured cells count %d expects %d",
			len(clients), cellsCount, cellsCount-1)
	}
	return clients, info, nil
}

// SelectUpdateCells picks the {oldest, latest, info} snapshot out of a
// family's live cells. The latest slot is the one named by the info cell's
// last_id; the oldest is the next slot in ring order, the one an update
// will overwrite.
func SelectUpdateCells(cells []types.CellInfo, cellsCount uint8) (*types.UpdateCells, error) {
	if _, _, err := ParseFamilyCells(cells, cellsCount); err != nil {
		return nil, err
	}

	var (
		infoCell *types.CellInfo
		lastID   uint8
	)
	byID := make(map[uint8]*types.CellInfo, len(cells))
	for i := range cells {
		cell := &cells[i]
		if len(cell.Data) == types.ClientInfoSize {
			info := new(types.ClientInfo)
			if err := info.UnmarshalBinary(cell.Data); err != nil {
				return nil, err
			}
			infoCell = cell
			lastID = info.LastID
			continue
		}
		client := new(types.Client)
		if err := client.UnmarshalBinary(cell.Data); err != nil {
			return nil, err
		}
		if _, dup := byID[client.ID]; dup {
			return nil, fmt.Errorf("duplicate client id %d in family", client.ID)
		}
		byID[client.ID] = cell
	}

	ringSize := cellsCount - 1
	if lastID >= ringSize {
		return nil, fmt.Errorf("info last_id %d outside ring of %d slots", lastID, ringSize)
	}
	latest, ok := byID[lastID]
	if !ok {
		return nil, fmt.Errorf("no client cell for last_id %d", lastID)
	}
	oldestID := (lastID + 1) % ringSize
	oldest, ok := byID[oldestID]
	if !ok {
		return nil, fmt.Errorf("no client cell for oldest id %d", oldestID)
	}

	return &types.UpdateCells{Oldest: *oldest, Latest: *latest, Info: *infoCell}, nil
}
