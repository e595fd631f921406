// Package light implements the multi-client lifecycle manager: it aligns
// native header updates with on-chain state, verifies them into a successor
// client record, assembles ring-buffer transactions and submits them with
// confirmation polling, rolling the local proof store back whenever a write
// does not durably land on-chain.
package light

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lightring/lightring/assembler"
	"github.com/lightring/lightring/config"
	"github.com/lightring/lightring/keyring"
	"github.com/lightring/lightring/libs/log"
	"github.com/lightring/lightring/rpc"
	"github.com/lightring/lightring/store"
	"github.com/lightring/lightring/types"
)

// Option sets a parameter for the driver.
type Option func(*Driver)

// Logger option can be used to set a logger for the driver.
func Logger(l log.Logger) Option {
	return func(d *Driver) { d.logger = l }
}

// WithMetrics option sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(d *Driver) { d.metrics = m }
}

// WithVerifier option replaces the verification library implementation.
func WithVerifier(v Verifier) Option {
	return func(d *Driver) { d.verifier = v }
}

// ConfirmInterval option sets the confirmation polling interval.
func ConfirmInterval(interval time.Duration) Option {
	return func(d *Driver) { d.pollInterval = interval }
}

// ConfirmTimeout option sets the confirmation deadline.
func ConfirmTimeout(timeout time.Duration) Option {
	return func(d *Driver) { d.confirmTimeout = timeout }
}

// SkipDeploymentCheck option disables the bootstrap-time existence checks of
// the deployed lock/contract cells. Used in tests.
func SkipDeploymentCheck() Option {
	return func(d *Driver) { d.skipDeploymentCheck = true }
}

// Driver maintains one ring-buffer family for one source chain. Its public
// workflows are synchronous and strictly sequential internally; the
// embedding system must serialize calls to a given driver instance.
// Concurrent create/update attempts against the same family are not
// supported.
type Driver struct {
	cfg      *config.ChainConfig
	rpc      rpc.Client
	keyring  keyring.KeyRing
	store    store.Store
	asm      *assembler.Assembler
	verifier Verifier

	// Last client record seen on-chain, refreshed by every workflow's
	// read path.
	onchainClient *types.Client

	// Resolved once over the network, then immutable for the process
	// lifetime. Racing misses recompute idempotently; last writer wins.
	networkMtx    sync.RWMutex
	cachedNetwork *keyring.Network
	addressMtx    sync.RWMutex
	cachedAddress *keyring.Address

	pollInterval        time.Duration
	confirmTimeout      time.Duration
	skipDeploymentCheck bool

	logger  log.Logger
	metrics *Metrics
}

// NewDriver validates the configuration against the chain (the deployed
// lock and contract cells must exist, the signing key must be readable),
// logs the initial status and returns a ready driver.
func NewDriver(
	ctx context.Context,
	cfg *config.ChainConfig,
	client rpc.Client,
	keys keyring.KeyRing,
	st store.Store,
	options ...Option,
) (*Driver, error) {
	if err := cfg.ValidateBasic(); err != nil {
		return nil, ErrConfiguration{Reason: "invalid chain config", Err: err}
	}
	lockArgs, err := cfg.LockArgs()
	if err != nil {
		return nil, ErrConfiguration{Reason: "invalid lightclient_lock_typeargs", Err: err}
	}
	contractArgs, err := cfg.ContractArgs()
	if err != nil {
		return nil, ErrConfiguration{Reason: "invalid lightclient_contract_typeargs", Err: err}
	}

	d := &Driver{
		cfg:            cfg,
		rpc:            client,
		keyring:        keys,
		store:          st,
		asm:            assembler.New(lockArgs, contractArgs),
		pollInterval:   3 * time.Second,
		confirmTimeout: 60 * time.Second,
		logger:         log.NewNopLogger(),
		metrics:        NopMetrics(),
	}
	for _, o := range options {
		o(d)
	}
	if d.verifier == nil {
		return nil, ErrConfiguration{Reason: "no verifier configured"}
	}

	if !d.skipDeploymentCheck {
		cell, err := d.rpc.SearchCellByTypeScript(ctx, assembler.TypeIDCodeHash, contractArgs)
		if err != nil {
			return nil, fmt.Errorf("searching contract cell: %w", err)
		}
		if cell == nil {
			return nil, ErrConfiguration{Reason: "invalid lightclient_contract_typeargs option: contract cell not deployed"}
		}
		cell, err = d.rpc.SearchCellByTypeScript(ctx, assembler.TypeIDCodeHash, lockArgs)
		if err != nil {
			return nil, fmt.Errorf("searching lock cell: %w", err)
		}
		if cell == nil {
			return nil, ErrConfiguration{Reason: "invalid lightclient_lock_typeargs option: lock cell not deployed"}
		}
	}

	if _, err := d.keyring.GetKey(cfg.KeyName); err != nil {
		return nil, ErrKeyAccess{KeyName: cfg.KeyName, Reason: err}
	}

	if err := d.StatusLog(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// CreateClients bootstraps the ring-buffer family from the given ordered
// header updates: cells_count-1 identical client cells plus the info cell,
// under a freshly minted type id. The minted id is recorded in the driver's
// config and must be persisted by the operator.
//
// If the configured family already exists on-chain, ErrClientsAlreadyExist
// reports the slot it was created at and nothing is attempted.
func (d *Driver) CreateClients(ctx context.Context, updates []*types.HeaderUpdate) error {
	chainID := d.cfg.ID

	typeID, err := d.cfg.TypeID()
	if err != nil {
		return ErrConfiguration{Reason: "invalid client_type_args.type_id", Err: err}
	}
	if typeID != nil {
		typeArgs := &types.ClientTypeArgs{TypeID: *typeID, CellsCount: d.cfg.ClientTypeArgs.CellsCount}
		contractArgs, _ := d.cfg.ContractArgs()
		cells, err := d.rpc.FetchUpdateCells(ctx, contractArgs, typeArgs)
		if err != nil {
			return fmt.Errorf("fetching update cells: %w", err)
		}
		if cells == nil {
			return ErrConfiguration{Reason: "no multi-client cells found for configured type id"}
		}
		latest := new(types.Client)
		if err := latest.UnmarshalBinary(cells.Latest.Data); err != nil {
			return ErrConfiguration{Reason: "undecodable on-chain client cell", Err: err}
		}
		d.onchainClient = latest
		// Reported as a creation marker, not a fault in the data.
		return ErrClientsAlreadyExist{Slot: latest.MinimalSlot}
	}

	clientCount := int(d.cfg.ClientTypeArgs.CellsCount) - 1

	checkpoint, client, proof, err := d.newClientAndProof(chainID, updates, nil, d.cfg.MinimalUpdatesCount)
	if err != nil {
		return err
	}

	clients := make([]*types.Client, clientCount)
	for i := 0; i < clientCount; i++ {
		clients[i] = client.WithID(uint8(i))
	}
	info := &types.ClientInfo{LastID: 0, MinimalUpdatesCount: d.cfg.MinimalUpdatesCount}

	address, feeCells, err := d.fundingFor(ctx, assembler.CreateRequiredCapacity(clientCount+1))
	if err != nil {
		return d.rollbackTo(checkpoint, err)
	}

	tx, consumed, mintedID, err := d.asm.CreateTx(address, clients, info, proof, feeCells)
	if err != nil {
		return d.rollbackTo(checkpoint, ErrConfiguration{Reason: "assembling create transaction", Err: err})
	}

	if err := d.signAndSend(ctx, tx, consumed); err != nil {
		return d.rollbackTo(checkpoint, err)
	}

	d.cfg.SetTypeID(mintedID)
	d.logger.Info("new multi-client family created; persist the type id into the config",
		"chain_id", chainID, "type_id", mintedID)

	return d.StatusLog(ctx)
}

// UpdateClients rotates the ring: it verifies the given updates against the
// latest on-chain client and rewrites the oldest slot with the successor
// record.
func (d *Driver) UpdateClients(ctx context.Context, updates []*types.HeaderUpdate) error {
	chainID := d.cfg.ID

	typeID, err := d.cfg.TypeID()
	if err != nil || typeID == nil {
		return ErrConfiguration{Reason: "no type id in client type args", Err: err}
	}
	typeArgs := &types.ClientTypeArgs{TypeID: *typeID, CellsCount: d.cfg.ClientTypeArgs.CellsCount}
	contractArgs, _ := d.cfg.ContractArgs()

	cells, err := d.rpc.FetchUpdateCells(ctx, contractArgs, typeArgs)
	if err != nil {
		return fmt.Errorf("fetching update cells: %w", err)
	}
	if cells == nil {
		return ErrConfiguration{Reason: "no multi-client cells found"}
	}

	latest := new(types.Client)
	if err := latest.UnmarshalBinary(cells.Latest.Data); err != nil {
		return ErrConfiguration{Reason: "undecodable on-chain client cell", Err: err}
	}
	d.onchainClient = latest

	oldest := new(types.Client)
	if err := oldest.UnmarshalBinary(cells.Oldest.Data); err != nil {
		return ErrConfiguration{Reason: "undecodable on-chain client cell", Err: err}
	}

	// The family's batching policy lives on-chain, not in local config.
	onchainInfo := new(types.ClientInfo)
	if err := onchainInfo.UnmarshalBinary(cells.Info.Data); err != nil {
		return ErrConfiguration{Reason: "undecodable on-chain info cell", Err: err}
	}

	checkpoint, client, proof, err := d.newClientAndProof(chainID, updates, latest, onchainInfo.MinimalUpdatesCount)
	if err != nil {
		return err
	}

	// The ring always overwrites the slot furthest behind.
	client = client.WithID(oldest.ID)

	address, feeCells, err := d.fundingFor(ctx, assembler.UpdateRequiredCapacity())
	if err != nil {
		return d.rollbackTo(checkpoint, err)
	}

	tx, consumed, err := d.asm.UpdateTx(address, cells, client, typeArgs, proof, feeCells)
	if err != nil {
		return d.rollbackTo(checkpoint, ErrConfiguration{Reason: "assembling update transaction", Err: err})
	}

	if err := d.signAndSend(ctx, tx, consumed); err != nil {
		return d.rollbackTo(checkpoint, err)
	}

	return d.StatusLog(ctx)
}

// fundingFor resolves the fee-payer address and collects capacity cells for
// a transaction.
func (d *Driver) fundingFor(ctx context.Context, capacity uint64) (keyring.Address, []types.CellInfo, error) {
	address, err := d.feePayerAddress(ctx)
	if err != nil {
		return keyring.Address{}, nil, err
	}
	feeCells, err := d.rpc.CollectFeeCells(ctx, address.LockScript(), capacity)
	if err != nil {
		return keyring.Address{}, nil, fmt.Errorf("collecting fee cells: %w", err)
	}
	return address, feeCells, nil
}

// Network resolves the ledger's network identity, memoized for the process
// lifetime.
func (d *Driver) Network(ctx context.Context) (keyring.Network, error) {
	d.networkMtx.RLock()
	cached := d.cachedNetwork
	d.networkMtx.RUnlock()
	if cached != nil {
		return *cached, nil
	}

	info, err := d.rpc.GetBlockchainInfo(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetching blockchain info: %w", err)
	}
	var network keyring.Network
	switch info.Chain {
	case "ckb":
		network = keyring.NetworkMainnet
	case "ckb_testnet":
		network = keyring.NetworkTestnet
	default:
		network = keyring.NetworkDevnet
	}

	d.networkMtx.Lock()
	d.cachedNetwork = &network
	d.networkMtx.Unlock()
	return network, nil
}

// feePayerAddress resolves the address derived from the signing key,
// memoized for the process lifetime.
func (d *Driver) feePayerAddress(ctx context.Context) (keyring.Address, error) {
	d.addressMtx.RLock()
	cached := d.cachedAddress
	d.addressMtx.RUnlock()
	if cached != nil {
		return *cached, nil
	}

	network, err := d.Network(ctx)
	if err != nil {
		return keyring.Address{}, err
	}
	key, err := d.keyring.GetKey(d.cfg.KeyName)
	if err != nil {
		return keyring.Address{}, ErrKeyAccess{KeyName: d.cfg.KeyName, Reason: err}
	}
	address := key.Address(network)

	d.addressMtx.Lock()
	d.cachedAddress = &address
	d.addressMtx.Unlock()
	return address, nil
}
