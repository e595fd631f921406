// Package assembler builds create/update ledger transactions against the
// fixed-size multi-cell client layout. Assembly is pure: every cell the
// transaction consumes has already been fetched by the caller, and the
// produced transaction is well-formed and fee-balanced but unsigned.
package assembler

import (
	"encoding/binary"
	"fmt"

	"github.com/lightring/lightring/keyring"
	"github.com/lightring/lightring/types"
)

const (
	// TxFee is the flat fee every assembled transaction pays.
	TxFee uint64 = 100_000

	// RingCellCapacity is the capacity carried by each ring-buffer cell.
	RingCellCapacity uint64 = 300 * 100_000_000

	// changeMinCapacity is the smallest change cell worth creating.
	changeMinCapacity uint64 = 61 * 100_000_000
)

// CreateRequiredCapacity is the input capacity the bootstrap transaction
// needs for ringCells ring-buffer cells plus fee and change.
func CreateRequiredCapacity(ringCells int) uint64 {
	return uint64(ringCells)*RingCellCapacity + TxFee + changeMinCapacity
}

// UpdateRequiredCapacity is the extra input capacity an update transaction
// collects on top of the ring cells it spends.
func UpdateRequiredCapacity() uint64 {
	return TxFee
}

// TypeIDCodeHash is the ledger's well-known type-id system script.
var TypeIDCodeHash = types.LedgerHash([]byte("type-id"))

// Assembler builds transactions for one deployed light-client family:
// lockArgs and contractArgs are the type-id args of the deployed lock and
// contract code cells.
type Assembler struct {
	lockArgs     []byte
	contractArgs []byte
}

// New returns an assembler for the deployment identified by the two type-id
// args.
func New(lockArgs, contractArgs []byte) *Assembler {
	return &Assembler{lockArgs: lockArgs, contractArgs: contractArgs}
}

// TypeIDScript is the type script locating a deployed code cell.
func TypeIDScript(args []byte) types.Script {
	return types.Script{CodeHash: TypeIDCodeHash, HashType: types.HashTypeType, Args: args}
}

// MintTypeID derives a fresh family type id from the first input of the
// bootstrap transaction and the output index, which makes it unique across
// the ledger's history.
func MintTypeID(firstInput types.CellInput, outputIndex uint64) types.Hash {
	bz := make([]byte, types.HashSize+4+8+8)
	copy(bz, firstInput.PreviousOutput.TxHash[:])
	binary.LittleEndian.PutUint32(bz[types.HashSize:], firstInput.PreviousOutput.Index)
	binary.LittleEndian.PutUint64(bz[types.HashSize+4:], firstInput.Since)
	binary.LittleEndian.PutUint64(bz[types.HashSize+12:], outputIndex)
	return types.LedgerHash(bz)
}

// contractScript is the type script of the family's ring cells.
func (a *Assembler) contractScript(typeArgs *types.ClientTypeArgs) (types.Script, error) {
	deployed := TypeIDScript(a.contractArgs)
	packed, err := typeArgs.MarshalBinary()
	if err != nil {
		return types.Script{}, err
	}
	return types.Script{CodeHash: deployed.Hash(), HashType: types.HashTypeType, Args: packed}, nil
}

// ringLock is the lock script guarding the family's ring cells.
func (a *Assembler) ringLock() types.Script {
	deployed := TypeIDScript(a.lockArgs)
	return types.Script{CodeHash: deployed.Hash(), HashType: types.HashTypeType}
}

// CreateTx builds the one-time bootstrap transaction instantiating the
// ring-buffer family: len(clients) rotating client cells plus the info cell,
// under a freshly minted type id. It returns the unsigned transaction, the
// outputs it consumes (for signing) and the minted type id, which the caller
// must persist for all future operations on the family.
func (a *Assembler) CreateTx(
	addr keyring.Address,
	clients []*types.Client,
	info *types.ClientInfo,
	proof *types.ProofUpdate,
	feeCells []types.CellInfo,
) (*types.Transaction, []types.CellOutput, types.Hash, error) {
	if len(clients) == 0 {
		return nil, nil, types.Hash{}, fmt.Errorf("%w: no client records", ErrLayoutMismatch)
	}
	if len(clients)+1 > int(^uint8(0)) {
		return nil, nil, types.Hash{}, fmt.Errorf("%w: %d clients overflow the cells count", ErrLayoutMismatch, len(clients))
	}
	for i, c := range clients {
		if int(c.ID) != i {
			return nil, nil, types.Hash{}, fmt.Errorf("%w: client #%d tagged id %d", ErrLayoutMismatch, i, c.ID)
		}
		if err := c.ValidateBasic(); err != nil {
			return nil, nil, types.Hash{}, fmt.Errorf("%w: client #%d: %v", ErrLayoutMismatch, i, err)
		}
	}
	if info.LastID != 0 {
		return nil, nil, types.Hash{}, fmt.Errorf("%w: bootstrap info last_id must be 0, got %d", ErrLayoutMismatch, info.LastID)
	}
	if err := proof.ValidateBasic(); err != nil {
		return nil, nil, types.Hash{}, fmt.Errorf("invalid proof update: %w", err)
	}
	if len(feeCells) == 0 {
		return nil, nil, types.Hash{}, ErrInsufficientCapacity
	}

	inputs := make([]types.CellInput, 0, len(feeCells))
	consumed := make([]types.CellOutput, 0, len(feeCells))
	var inputCapacity uint64
	for _, cell := range feeCells {
		inputs = append(inputs, types.CellInput{PreviousOutput: cell.OutPoint})
		consumed = append(consumed, cell.Output)
		inputCapacity += cell.Output.Capacity
	}

	ringCells := uint64(len(clients)) + 1
	required := ringCells*RingCellCapacity + TxFee + changeMinCapacity
	if inputCapacity < required {
		return nil, nil, types.Hash{}, fmt.Errorf("%w: have %d, need %d", ErrInsufficientCapacity, inputCapacity, required)
	}

	typeID := MintTypeID(inputs[0], 0)
	typeArgs := &types.ClientTypeArgs{TypeID: typeID, CellsCount: uint8(len(clients) + 1)}
	contractScript, err := a.contractScript(typeArgs)
	if err != nil {
		return nil, nil, types.Hash{}, err
	}
	lock := a.ringLock()

	tx := &types.Transaction{
		CellDeps: []types.OutPoint{},
		Inputs:   inputs,
	}
	for _, c := range clients {
		data, err := c.MarshalBinary()
		if err != nil {
			return nil, nil, types.Hash{}, err
		}
		tx.Outputs = append(tx.Outputs, types.CellOutput{
			Capacity: RingCellCapacity,
			Lock:     lock,
			Type:     &contractScript,
		})
		tx.OutputsData = append(tx.OutputsData, data)
	}
	infoData, err := info.MarshalBinary()
	if err != nil {
		return nil, nil, types.Hash{}, err
	}
	tx.Outputs = append(tx.Outputs, types.CellOutput{
		Capacity: RingCellCapacity,
		Lock:     lock,
		Type:     &contractScript,
	})
	tx.OutputsData = append(tx.OutputsData, infoData)

	change := inputCapacity - ringCells*RingCellCapacity - TxFee
	tx.Outputs = append(tx.Outputs, types.CellOutput{
		Capacity: change,
		Lock:     addr.LockScript(),
	})
	tx.OutputsData = append(tx.OutputsData, []byte{})

	tx.Witnesses = proofWitnesses(len(inputs), proof)

	return tx, consumed, typeID, nil
}

// UpdateTx builds the rotating update transaction: it spends the family's
// {oldest, latest, info} cells, rewrites the oldest slot with newClient and
// bumps the info cell's last_id to the id the new client cell now occupies.
func (a *Assembler) UpdateTx(
	addr keyring.Address,
	cells *types.UpdateCells,
	newClient *types.Client,
	typeArgs *types.ClientTypeArgs,
	proof *types.ProofUpdate,
	feeCells []types.CellInfo,
) (*types.Transaction, []types.CellOutput, error) {
	if typeArgs.TypeID.IsZero() {
		return nil, nil, ErrInvalidTypeID
	}
	if err := typeArgs.ValidateBasic(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidTypeID, err)
	}
	if err := proof.ValidateBasic(); err != nil {
		return nil, nil, fmt.Errorf("invalid proof update: %w", err)
	}

	oldest, err := decodeClientCell(&cells.Oldest, typeArgs)
	if err != nil {
		return nil, nil, err
	}
	if _, err := decodeClientCell(&cells.Latest, typeArgs); err != nil {
		return nil, nil, err
	}
	info, err := decodeInfoCell(&cells.Info, typeArgs)
	if err != nil {
		return nil, nil, err
	}

	// The ring always overwrites the slot furthest behind.
	if newClient.ID != oldest.ID {
		return nil, nil, fmt.Errorf("%w: new client tagged id %d, oldest slot is %d",
			ErrLayoutMismatch, newClient.ID, oldest.ID)
	}
	if err := newClient.ValidateBasic(); err != nil {
		return nil, nil, fmt.Errorf("invalid new client: %w", err)
	}

	inputs := []types.CellInput{
		{PreviousOutput: cells.Oldest.OutPoint},
		{PreviousOutput: cells.Latest.OutPoint},
		{PreviousOutput: cells.Info.OutPoint},
	}
	consumed := []types.CellOutput{cells.Oldest.Output, cells.Latest.Output, cells.Info.Output}
	inputCapacity := types.InputCapacity(consumed)
	for _, cell := range feeCells {
		inputs = append(inputs, types.CellInput{PreviousOutput: cell.OutPoint})
		consumed = append(consumed, cell.Output)
		inputCapacity += cell.Output.Capacity
	}

	clientData, err := newClient.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}
	newInfo := &types.ClientInfo{LastID: newClient.ID, MinimalUpdatesCount: info.MinimalUpdatesCount}
	infoData, err := newInfo.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}

	tx := &types.Transaction{
		CellDeps: []types.OutPoint{},
		Inputs:   inputs,
		Outputs: []types.CellOutput{
			{
				Capacity: cells.Oldest.Output.Capacity,
				Lock:     cells.Oldest.Output.Lock,
				Type:     cells.Oldest.Output.Type,
			},
			{
				Capacity: cells.Info.Output.Capacity,
				Lock:     cells.Info.Output.Lock,
				Type:     cells.Info.Output.Type,
			},
		},
		OutputsData: [][]byte{clientData, infoData},
	}

	spent := cells.Oldest.Output.Capacity + cells.Info.Output.Capacity + TxFee
	if inputCapacity < spent {
		return nil, nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientCapacity, inputCapacity, spent)
	}
	tx.Outputs = append(tx.Outputs, types.CellOutput{
		Capacity: inputCapacity - spent,
		Lock:     addr.LockScript(),
	})
	tx.OutputsData = append(tx.OutputsData, []byte{})

	tx.Witnesses = proofWitnesses(len(inputs), proof)

	return tx, consumed, nil
}

// proofWitnesses parks the proof payload in the first witness slot past the
// inputs; signing fills the input slots without disturbing it.
func proofWitnesses(inputCount int, proof *types.ProofUpdate) [][]byte {
	witnesses := make([][]byte, inputCount+1)
	for i := 0; i < inputCount; i++ {
		witnesses[i] = []byte{}
	}
	witnesses[inputCount] = proof.Bytes()
	return witnesses
}

func decodeClientCell(cell *types.CellInfo, typeArgs *types.ClientTypeArgs) (*types.Client, error) {
	if err := checkCellTypeArgs(cell, typeArgs); err != nil {
		return nil, err
	}
	client := new(types.Client)
	if err := client.UnmarshalBinary(cell.Data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLayoutMismatch, err)
	}
	return client, nil
}

func decodeInfoCell(cell *types.CellInfo, typeArgs *types.ClientTypeArgs) (*types.ClientInfo, error) {
	if err := checkCellTypeArgs(cell, typeArgs); err != nil {
		return nil, err
	}
	info := new(types.ClientInfo)
	if err := info.UnmarshalBinary(cell.Data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLayoutMismatch, err)
	}
	return info, nil
}

// checkCellTypeArgs confirms a fetched cell belongs to the configured family
// layout: its type script args must decode to the same type id and cells
// count.
func checkCellTypeArgs(cell *types.CellInfo, typeArgs *types.ClientTypeArgs) error {
	if cell.Output.Type == nil {
		return fmt.Errorf("%w: cell %s has no type script", ErrLayoutMismatch, cell.OutPoint)
	}
	onchain := new(types.ClientTypeArgs)
	if err := onchain.UnmarshalBinary(cell.Output.Type.Args); err != nil {
		return fmt.Errorf("%w: %v", ErrLayoutMismatch, err)
	}
	if onchain.TypeID != typeArgs.TypeID {
		return fmt.Errorf("%w: cell %s belongs to family %s", ErrLayoutMismatch, cell.OutPoint, onchain.TypeID)
	}
	if onchain.CellsCount != typeArgs.CellsCount {
		return fmt.Errorf("%w: on-chain cells count %d, configured %d",
			ErrLayoutMismatch, onchain.CellsCount, typeArgs.CellsCount)
	}
	return nil
}
