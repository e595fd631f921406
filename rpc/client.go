package rpc

import (
	"context"
	"fmt"

	"github.com/lightring/lightring/types"
)

// ValidatorPolicy selects how strictly the ledger node pre-validates a
// submitted transaction before accepting it into its pool.
type ValidatorPolicy int

const (
	// ValidatorWellKnownScripts only accepts transactions whose scripts are
	// on the node's allow list.
	ValidatorWellKnownScripts ValidatorPolicy = iota

	// ValidatorPassthrough skips strict pre-checks and accepts the
	// transaction into the pool opportunistically.
	ValidatorPassthrough
)

// TxStatus is the lifecycle status of a submitted transaction.
type TxStatus int

const (
	TxStatusUnknown TxStatus = iota
	TxStatusPending
	TxStatusProposed
	TxStatusCommitted
	TxStatusRejected
)

func (s TxStatus) String() string {
	switch s {
	case TxStatusPending:
		return "pending"
	case TxStatusProposed:
		return "proposed"
	case TxStatusCommitted:
		return "committed"
	case TxStatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// BlockchainInfo is the ledger's self-reported identity.
type BlockchainInfo struct {
	Chain string
}

// TxPoolInfo is a snapshot of the node's transaction pool, attached to
// duplicate-submission errors for operator triage.
type TxPoolInfo struct {
	Pending   uint64
	Proposed  uint64
	Orphan    uint64
	TotalSize uint64
}

func (i *TxPoolInfo) String() string {
	return fmt.Sprintf("tx_pool{pending: %d, proposed: %d, orphan: %d, total_size: %d}",
		i.Pending, i.Proposed, i.Orphan, i.TotalSize)
}

// Reader is the ledger indexer read path consumed by the chain driver.
//
// Implementations fetch from a remote node; the wire encoding belongs to
// the transport (see rpc/http), not to this contract.
type Reader interface {
	// FetchUpdateCells returns the {oldest, latest, info} snapshot of the
	// ring-buffer family identified by typeArgs, or nil if the family does
	// not exist on-chain.
	FetchUpdateCells(ctx context.Context, contractArgs []byte, typeArgs *types.ClientTypeArgs) (*types.UpdateCells, error)

	// FetchClientsAndInfo returns every live client cell of the family plus
	// its metadata cell, or (nil, nil) if the family does not exist.
	FetchClientsAndInfo(ctx context.Context, contractArgs []byte, typeArgs *types.ClientTypeArgs) ([]*types.Client, *types.ClientInfo, error)

	// SearchCellByTypeScript returns the first live cell whose type script
	// matches, or nil if none does. Used for deployment existence checks.
	SearchCellByTypeScript(ctx context.Context, codeHash types.Hash, args []byte) (*types.CellInfo, error)

	// CollectFeeCells returns plain capacity cells locked by the given
	// script totalling at least minCapacity.
	CollectFeeCells(ctx context.Context, lock types.Script, minCapacity uint64) ([]types.CellInfo, error)

	// GetBlockchainInfo returns the ledger's identity.
	GetBlockchainInfo(ctx context.Context) (*BlockchainInfo, error)
}

// Writer is the ledger submission path consumed by the chain driver.
type Writer interface {
	// SendTransaction broadcasts a signed transaction under the given
	// validator policy and returns its hash.
	SendTransaction(ctx context.Context, tx *types.Transaction, policy ValidatorPolicy) (types.Hash, error)

	// GetTransactionStatus reports the current lifecycle status of a
	// transaction.
	GetTransactionStatus(ctx context.Context, hash types.Hash) (TxStatus, error)

	// TxPoolInfo returns a best-effort pool snapshot for diagnostics.
	TxPoolInfo(ctx context.Context) (*TxPoolInfo, error)
}

// Client bundles both directions of the collaborator contract.
type Client interface {
	Reader
	Writer
}
