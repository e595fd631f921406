package types

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Slot is a discrete unit index in the source chain's timeline that a
// verified header update attests to.
type Slot = uint64

const (
	// ClientSize is the packed byte size of a Client cell's data.
	ClientSize = 1 + 8 + 8 + HashSize

	// ClientInfoSize is the packed byte size of a ClientInfo cell's data.
	ClientInfoSize = 2

	// ClientTypeArgsSize is the packed byte size of ClientTypeArgs.
	ClientTypeArgsSize = HashSize + 1
)

// Client is one rotating slot of a ring-buffer family: an on-chain
// attestation of verified coverage over [MinimalSlot, MaximalSlot].
type Client struct {
	ID            uint8
	MinimalSlot   Slot
	MaximalSlot   Slot
	TipHeaderRoot Hash
}

// ValidateBasic performs stateless checks on the client record.
func (c *Client) ValidateBasic() error {
	if c.MinimalSlot > c.MaximalSlot {
		return fmt.Errorf("minimal slot %d above maximal slot %d", c.MinimalSlot, c.MaximalSlot)
	}
	if c.TipHeaderRoot.IsZero() {
		return errors.New("empty tip header root")
	}
	return nil
}

// WithID returns a copy of the client re-tagged with the given slot id.
func (c *Client) WithID(id uint8) *Client {
	cp := *c
	cp.ID = id
	return &cp
}

// MarshalBinary encodes the client into the fixed on-chain cell layout:
// id u8 | minimal_slot u64 LE | maximal_slot u64 LE | tip_header_root 32B.
func (c *Client) MarshalBinary() ([]byte, error) {
	bz := make([]byte, ClientSize)
	bz[0] = c.ID
	binary.LittleEndian.PutUint64(bz[1:9], c.MinimalSlot)
	binary.LittleEndian.PutUint64(bz[9:17], c.MaximalSlot)
	copy(bz[17:], c.TipHeaderRoot[:])
	return bz, nil
}

// UnmarshalBinary decodes a client record from cell data.
func (c *Client) UnmarshalBinary(bz []byte) error {
	if len(bz) != ClientSize {
		return fmt.Errorf("client cell data must be %d bytes, got %d", ClientSize, len(bz))
	}
	c.ID = bz[0]
	c.MinimalSlot = binary.LittleEndian.Uint64(bz[1:9])
	c.MaximalSlot = binary.LittleEndian.Uint64(bz[9:17])
	copy(c.TipHeaderRoot[:], bz[17:])
	return nil
}

func (c *Client) String() string {
	return fmt.Sprintf("Client{id: %d, slots: [%d, %d], tip_root: %s}",
		c.ID, c.MinimalSlot, c.MaximalSlot, c.TipHeaderRoot)
}

// ClientInfo is the metadata cell of a ring-buffer family. LastID names the
// slot most recently written; MinimalUpdatesCount is the minimum slot span a
// single update must cover to be accepted on-chain.
type ClientInfo struct {
	LastID              uint8
	MinimalUpdatesCount uint8
}

// MarshalBinary encodes the info record: last_id u8 | minimal_updates_count u8.
func (ci *ClientInfo) MarshalBinary() ([]byte, error) {
	return []byte{ci.LastID, ci.MinimalUpdatesCount}, nil
}

// UnmarshalBinary decodes an info record from cell data.
func (ci *ClientInfo) UnmarshalBinary(bz []byte) error {
	if len(bz) != ClientInfoSize {
		return fmt.Errorf("client info cell data must be %d bytes, got %d", ClientInfoSize, len(bz))
	}
	ci.LastID = bz[0]
	ci.MinimalUpdatesCount = bz[1]
	return nil
}

func (ci *ClientInfo) String() string {
	return fmt.Sprintf("ClientInfo{last_id: %d, minimal_updates_count: %d}",
		ci.LastID, ci.MinimalUpdatesCount)
}

// ClientTypeArgs identifies one ring-buffer family. CellsCount-1 is the
// number of rotating client slots; one extra cell holds the ClientInfo
// metadata. Immutable once the family is created.
type ClientTypeArgs struct {
	TypeID     Hash
	CellsCount uint8
}

// MinCellsCount is the smallest usable family layout: one rotating client
// slot plus the info cell.
const MinCellsCount = 2

// ValidateBasic performs stateless checks on the type args.
func (a *ClientTypeArgs) ValidateBasic() error {
	if a.TypeID.IsZero() {
		return errors.New("empty type id")
	}
	if a.CellsCount < MinCellsCount {
		return fmt.Errorf("cells count must be at least %d, got %d", MinCellsCount, a.CellsCount)
	}
	return nil
}

// MarshalBinary encodes the args: type_id 32B | cells_count u8.
func (a *ClientTypeArgs) MarshalBinary() ([]byte, error) {
	bz := make([]byte, ClientTypeArgsSize)
	copy(bz[:HashSize], a.TypeID[:])
	bz[HashSize] = a.CellsCount
	return bz, nil
}

// UnmarshalBinary decodes the args from script args bytes.
func (a *ClientTypeArgs) UnmarshalBinary(bz []byte) error {
	if len(bz) != ClientTypeArgsSize {
		return fmt.Errorf("client type args must be %d bytes, got %d", ClientTypeArgsSize, len(bz))
	}
	copy(a.TypeID[:], bz[:HashSize])
	a.CellsCount = bz[HashSize]
	return nil
}
