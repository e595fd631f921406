// Package http implements the ledger RPC contract over JSON-RPC 2.0, split
// across the node endpoint (chain state, transaction pool) and the indexer
// endpoint (live cell queries).
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/lightring/lightring/assembler"
	"github.com/lightring/lightring/rpc"
	"github.com/lightring/lightring/types"
)

var _ rpc.Client = (*Client)(nil)

// Client talks JSON-RPC to a ledger node and its indexer.
type Client struct {
	rpcAddr     string
	indexerAddr string
	http        *http.Client
	nextID      uint64
}

// New returns a client for the given node and indexer endpoints.
func New(rpcAddr, indexerAddr string) *Client {
	return &Client{
		rpcAddr:     rpcAddr,
		indexerAddr: indexerAddr,
		http:        &http.Client{Timeout: 30 * time.Second},
	}
}

type request struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

func (c *Client) call(ctx context.Context, addr, method string, params []interface{}, result interface{}) error {
	if params == nil {
		params = []interface{}{}
	}
	body, err := json.Marshal(request{
		JSONRPC: "2.0",
		ID:      atomic.AddUint64(&c.nextID, 1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, addr, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", method, err)
	}
	var parsed response
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("decoding %s response: %w", method, err)
	}
	if parsed.Error != nil {
		// The duplicate-transaction rejection surfaces as a sentinel so
		// the caller can attach pool diagnostics.
		if strings.Contains(parsed.Error.Message, "PoolRejectedDuplicatedTransaction") {
			return fmt.Errorf("%s: %v: %w", method, parsed.Error, rpc.ErrTxDuplicate)
		}
		return fmt.Errorf("%s: %w", method, parsed.Error)
	}
	if result != nil {
		if err := json.Unmarshal(parsed.Result, result); err != nil {
			return fmt.Errorf("decoding %s result: %w", method, err)
		}
	}
	return nil
}

func (c *Client) GetBlockchainInfo(ctx context.Context) (*rpc.BlockchainInfo, error) {
	var result struct {
		Chain string `json:"chain"`
	}
	if err := c.call(ctx, c.rpcAddr, "get_blockchain_info", nil, &result); err != nil {
		return nil, err
	}
	return &rpc.BlockchainInfo{Chain: result.Chain}, nil
}

func (c *Client) SendTransaction(ctx context.Context, tx *types.Transaction, policy rpc.ValidatorPolicy) (types.Hash, error) {
	policyName := "well_known_scripts_only"
	if policy == rpc.ValidatorPassthrough {
		policyName = "passthrough"
	}
	var result hexHash
	params := []interface{}{txToWire(tx), policyName}
	if err := c.call(ctx, c.rpcAddr, "send_transaction", params, &result); err != nil {
		return types.Hash{}, err
	}
	return types.Hash(result), nil
}

func (c *Client) GetTransactionStatus(ctx context.Context, hash types.Hash) (rpc.TxStatus, error) {
	var result struct {
		TxStatus struct {
			Status string `json:"status"`
		} `json:"tx_status"`
	}
	if err := c.call(ctx, c.rpcAddr, "get_transaction", []interface{}{hash.String()}, &result); err != nil {
		return rpc.TxStatusUnknown, err
	}
	switch result.TxStatus.Status {
	case "pending":
		return rpc.TxStatusPending, nil
	case "proposed":
		return rpc.TxStatusProposed, nil
	case "committed":
		return rpc.TxStatusCommitted, nil
	case "rejected":
		return rpc.TxStatusRejected, nil
	default:
		return rpc.TxStatusUnknown, nil
	}
}

func (c *Client) TxPoolInfo(ctx context.Context) (*rpc.TxPoolInfo, error) {
	var result struct {
		Pending   hexU64 `json:"pending"`
		Proposed  hexU64 `json:"proposed"`
		Orphan    hexU64 `json:"orphan"`
		TotalSize hexU64 `json:"total_tx_size"`
	}
	if err := c.call(ctx, c.rpcAddr, "tx_pool_info", nil, &result); err != nil {
		return nil, err
	}
	return &rpc.TxPoolInfo{
		Pending:   uint64(result.Pending),
		Proposed:  uint64(result.Proposed),
		Orphan:    uint64(result.Orphan),
		TotalSize: uint64(result.TotalSize),
	}, nil
}

func (c *Client) SearchCellByTypeScript(ctx context.Context, codeHash types.Hash, args []byte) (*types.CellInfo, error) {
	script := types.Script{CodeHash: codeHash, HashType: types.HashTypeType, Args: args}
	cells, err := c.getCells(ctx, &script, "type", 1)
	if err != nil {
		return nil, err
	}
	if len(cells) == 0 {
		return nil, nil
	}
	return &cells[0], nil
}

func (c *Client) FetchUpdateCells(ctx context.Context, contractArgs []byte, typeArgs *types.ClientTypeArgs) (*types.UpdateCells, error) {
	cells, err := c.fetchFamilyCells(ctx, contractArgs, typeArgs)
	if err != nil {
		return nil, err
	}
	if len(cells) == 0 {
		return nil, nil
	}
	return rpc.SelectUpdateCells(cells, typeArgs.CellsCount)
}

func (c *Client) FetchClientsAndInfo(ctx context.Context, contractArgs []byte, typeArgs *types.ClientTypeArgs) ([]*types.Client, *types.ClientInfo, error) {
	cells, err := c.fetchFamilyCells(ctx, contractArgs, typeArgs)
	if err != nil {
		return nil, nil, err
	}
	if len(cells) == 0 {
		return nil, nil, nil
	}
	return rpc.ParseFamilyCells(cells, typeArgs.CellsCount)
}

// fetchFamilyCells queries the indexer for every live cell typed with the
// family's contract script.
func (c *Client) fetchFamilyCells(ctx context.Context, contractArgs []byte, typeArgs *types.ClientTypeArgs) ([]types.CellInfo, error) {
	deployed := assembler.TypeIDScript(contractArgs)
	packed, err := typeArgs.MarshalBinary()
	if err != nil {
		return nil, err
	}
	script := types.Script{CodeHash: deployed.Hash(), HashType: types.HashTypeType, Args: packed}
	return c.getCells(ctx, &script, "type", int(typeArgs.CellsCount))
}

func (c *Client) CollectFeeCells(ctx context.Context, lock types.Script, minCapacity uint64) ([]types.CellInfo, error) {
	cells, err := c.getCells(ctx, &lock, "lock", 100)
	if err != nil {
		return nil, err
	}

	var (
		collected []types.CellInfo
		capacity  uint64
	)
	for i := range cells {
		// Plain capacity cells only: anything carrying data or a type
		// script has another job.
		if len(cells[i].Data) > 0 || cells[i].Output.Type != nil {
			continue
		}
		collected = append(collected, cells[i])
		capacity += cells[i].Output.Capacity
		if capacity >= minCapacity {
			return collected, nil
		}
	}
	return nil, fmt.Errorf("insufficient capacity under lock: have %d, need %d", capacity, minCapacity)
}

func (c *Client) getCells(ctx context.Context, script *types.Script, scriptType string, limit int) ([]types.CellInfo, error) {
	searchKey := map[string]interface{}{
		"script":      scriptToWire(script),
		"script_type": scriptType,
	}
	var result struct {
		Objects []wireCell `json:"objects"`
	}
	params := []interface{}{searchKey, "asc", fmt.Sprintf("0x%x", limit)}
	if err := c.call(ctx, c.indexerAddr, "get_cells", params, &result); err != nil {
		return nil, err
	}

	cells := make([]types.CellInfo, 0, len(result.Objects))
	for _, obj := range result.Objects {
		cell, err := obj.toCellInfo()
		if err != nil {
			return nil, err
		}
		cells = append(cells, cell)
	}
	return cells, nil
}
