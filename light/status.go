package light

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lightring/lightring/store"
	"github.com/lightring/lightring/types"
)

// StatusLog renders a combined snapshot of the on-chain ring-buffer
// contents and the local proof store's window. Read-only; either side may
// be absent and renders as NONE.
func (d *Driver) StatusLog(ctx context.Context) error {
	var status strings.Builder

	typeID, err := d.cfg.TypeID()
	if err != nil {
		return ErrConfiguration{Reason: "invalid client_type_args.type_id", Err: err}
	}
	if typeID != nil {
		typeArgs := &types.ClientTypeArgs{TypeID: *typeID, CellsCount: d.cfg.ClientTypeArgs.CellsCount}
		contractArgs, _ := d.cfg.ContractArgs()
		clients, info, err := d.rpc.FetchClientsAndInfo(ctx, contractArgs, typeArgs)
		if err != nil {
			return fmt.Errorf("fetching clients and info: %w", err)
		}
		if clients != nil {
			sort.Slice(clients, func(i, j int) bool { return clients[i].ID < clients[j].ID })
			status.WriteString("on-chain status:\n")
			for _, c := range clients {
				status.WriteString(c.String())
				status.WriteString("\n")
			}
			status.WriteString(info.String())
			status.WriteString("\n")
		} else {
			status.WriteString("on-chain status: NONE, ")
		}
	} else {
		status.WriteString("on-chain status: NONE, ")
	}

	base, err := d.store.BaseSlot()
	if err != nil {
		return ErrStorage{Op: "read base", Reason: err}
	}
	tip, err := d.store.TipSlot()
	if err != nil {
		return ErrStorage{Op: "read tip", Reason: err}
	}
	if base != nil && tip != nil {
		status.WriteString(fmt.Sprintf("native status: [%d, %d]", *base, *tip))
		d.metrics.StoreTip.Set(float64(*tip))
	} else {
		status.WriteString("native status: NONE")
	}

	d.logger.Info("[STATUS] " + status.String())
	return nil
}

// QueryClientState returns the tracked chain's client state as seen by this
// driver: the latest on-chain client record paired with the locally stored
// update at its tip slot (nil when the local window does not reach it).
func (d *Driver) QueryClientState(ctx context.Context) (types.AnyClientState, error) {
	typeID, err := d.cfg.TypeID()
	if err != nil {
		return types.AnyClientState{}, ErrConfiguration{Reason: "invalid client_type_args.type_id", Err: err}
	}
	if typeID == nil {
		return types.AnyClientState{}, ErrConfiguration{Reason: "no type id in client type args"}
	}
	typeArgs := &types.ClientTypeArgs{TypeID: *typeID, CellsCount: d.cfg.ClientTypeArgs.CellsCount}
	contractArgs, _ := d.cfg.ContractArgs()

	cells, err := d.rpc.FetchUpdateCells(ctx, contractArgs, typeArgs)
	if err != nil {
		return types.AnyClientState{}, fmt.Errorf("fetching update cells: %w", err)
	}
	if cells == nil {
		return types.AnyClientState{}, ErrConfiguration{Reason: "no multi-client cells found"}
	}
	latest := new(types.Client)
	if err := latest.UnmarshalBinary(cells.Latest.Data); err != nil {
		return types.AnyClientState{}, ErrConfiguration{Reason: "undecodable on-chain client cell", Err: err}
	}

	tipUpdate, err := d.store.Header(latest.MaximalSlot)
	if err != nil && !errors.Is(err, store.ErrHeaderNotFound) {
		return types.AnyClientState{}, ErrStorage{Op: "read header", Reason: err}
	}
	return types.NewEthClientState(&types.EthClientState{
		ChainID:           d.cfg.ID,
		LightClientUpdate: tipUpdate,
	}), nil
}
