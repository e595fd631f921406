// Package mock provides a function-field test double for the ledger RPC
// collaborator contract.
package mock

import (
	"context"
	"errors"

	"github.com/lightring/lightring/rpc"
	"github.com/lightring/lightring/types"
)

var _ rpc.Client = (*Client)(nil)

// Client implements rpc.Client by delegating to the configured functions.
// Calls to unset functions fail loudly so tests only stub what they use.
type Client struct {
	FetchUpdateCellsFn       func(ctx context.Context, contractArgs []byte, typeArgs *types.ClientTypeArgs) (*types.UpdateCells, error)
	FetchClientsAndInfoFn    func(ctx context.Context, contractArgs []byte, typeArgs *types.ClientTypeArgs) ([]*types.Client, *types.ClientInfo, error)
	SearchCellByTypeScriptFn func(ctx context.Context, codeHash types.Hash, args []byte) (*types.CellInfo, error)
	CollectFeeCellsFn        func(ctx context.Context, lock types.Script, minCapacity uint64) ([]types.CellInfo, error)
	GetBlockchainInfoFn      func(ctx context.Context) (*rpc.BlockchainInfo, error)
	SendTransactionFn        func(ctx context.Context, tx *types.Transaction, policy rpc.ValidatorPolicy) (types.Hash, error)
	GetTransactionStatusFn   func(ctx context.Context, hash types.Hash) (rpc.TxStatus, error)
	TxPoolInfoFn             func(ctx context.Context) (*rpc.TxPoolInfo, error)
}

func (c *Client) FetchUpdateCells(ctx context.Context, contractArgs []byte, typeArgs *types.ClientTypeArgs) (*types.UpdateCells, error) {
	if c.FetchUpdateCellsFn == nil {
		return nil, errors.New("mock: FetchUpdateCells not stubbed")
	}
	return c.FetchUpdateCellsFn(ctx, contractArgs, typeArgs)
}

func (c *Client) FetchClientsAndInfo(ctx context.Context, contractArgs []byte, typeArgs *types.ClientTypeArgs) ([]*types.Client, *types.ClientInfo, error) {
	if c.FetchClientsAndInfoFn == nil {
		return nil, nil, errors.New("mock: FetchClientsAndInfo not stubbed")
	}
	return c.FetchClientsAndInfoFn(ctx, contractArgs, typeArgs)
}

func (c *Client) SearchCellByTypeScript(ctx context.Context, codeHash types.Hash, args []byte) (*types.CellInfo, error) {
	if c.SearchCellByTypeScriptFn == nil {
		return nil, errors.New("mock: SearchCellByTypeScript not stubbed")
	}
	return c.SearchCellByTypeScriptFn(ctx, codeHash, args)
}

func (c *Client) CollectFeeCells(ctx context.Context, lock types.Script, minCapacity uint64) ([]types.CellInfo, error) {
	if c.CollectFeeCellsFn == nil {
		return nil, errors.New("mock: CollectFeeCells not stubbed")
	}
	return c.CollectFeeCellsFn(ctx, lock, minCapacity)
}

func (c *Client) GetBlockchainInfo(ctx context.Context) (*rpc.BlockchainInfo, error) {
	if c.GetBlockchainInfoFn == nil {
		return nil, errors.New("mock: GetBlockchainInfo not stubbed")
	}
	return c.GetBlockchainInfoFn(ctx)
}

func (c *Client) SendTransaction(ctx context.Context, tx *types.Transaction, policy rpc.ValidatorPolicy) (types.Hash, error) {
	if c.SendTransactionFn == nil {
		return types.Hash{}, errors.New("mock: SendTransaction not stubbed")
	}
	return c.SendTransactionFn(ctx, tx, policy)
}

func (c *Client) GetTransactionStatus(ctx context.Context, hash types.Hash) (rpc.TxStatus, error) {
	if c.GetTransactionStatusFn == nil {
		return rpc.TxStatusUnknown, errors.New("mock: GetTransactionStatus not stubbed")
	}
	return c.GetTransactionStatusFn(ctx, hash)
}

func (c *Client) TxPoolInfo(ctx context.Context) (*rpc.TxPoolInfo, error) {
	if c.TxPoolInfoFn == nil {
		return nil, errors.New("mock: TxPoolInfo not stubbed")
	}
	return c.TxPoolInfoFn(ctx)
}
