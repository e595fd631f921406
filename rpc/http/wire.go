package http

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/lightring/lightring/types"
)

// The wire layer mirrors the node's JSON conventions: numbers are
// 0x-prefixed hex strings, byte fields are 0x-prefixed hex.

type hexU64 uint64

func (v hexU64) MarshalJSON() ([]byte, error) {
	return json.Marshal(fmt.Sprintf("0x%x", uint64(v)))
}

func (v *hexU64) UnmarshalJSON(bz []byte) error {
	var s string
	if err := json.Unmarshal(bz, &s); err != nil {
		return err
	}
	parsed, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 64)
	if err != nil {
		return fmt.Errorf("parsing hex number %q: %w", s, err)
	}
	*v = hexU64(parsed)
	return nil
}

type hexBytes []byte

func (v hexBytes) MarshalJSON() ([]byte, error) {
	return json.Marshal("0x" + hex.EncodeToString(v))
}

func (v *hexBytes) UnmarshalJSON(bz []byte) error {
	var s string
	if err := json.Unmarshal(bz, &s); err != nil {
		return err
	}
	decoded, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return fmt.Errorf("parsing hex bytes %q: %w", s, err)
	}
	*v = decoded
	return nil
}

type hexHash types.Hash

func (v hexHash) MarshalJSON() ([]byte, error) {
	return json.Marshal(types.Hash(v).String())
}

func (v *hexHash) UnmarshalJSON(bz []byte) error {
	var s string
	if err := json.Unmarshal(bz, &s); err != nil {
		return err
	}
	h, err := types.HashFromHex(s)
	if err != nil {
		return err
	}
	*v = hexHash(h)
	return nil
}

type wireScript struct {
	CodeHash hexHash  `json:"code_hash"`
	HashType string   `json:"hash_type"`
	Args     hexBytes `json:"args"`
}

func scriptToWire(s *types.Script) *wireScript {
	if s == nil {
		return nil
	}
	hashType := "data"
	if s.HashType == types.HashTypeType {
		hashType = "type"
	}
	return &wireScript{CodeHash: hexHash(s.CodeHash), HashType: hashType, Args: hexBytes(s.Args)}
}

func (w *wireScript) toScript() (*types.Script, error) {
	if w == nil {
		return nil, nil
	}
	var hashType types.ScriptHashType
	switch w.HashType {
	case "data":
		hashType = types.HashTypeData
	case "type":
		hashType = types.HashTypeType
	default:
		return nil, fmt.Errorf("unknown hash type %q", w.HashType)
	}
	return &types.Script{CodeHash: types.Hash(w.CodeHash), HashType: hashType, Args: []byte(w.Args)}, nil
}

type wireOutPoint struct {
	TxHash hexHash `json:"tx_hash"`
	Index  hexU64  `json:"index"`
}

type wireInput struct {
	Since          hexU64       `json:"since"`
	PreviousOutput wireOutPoint `json:"previous_output"`
}

type wireOutput struct {
	Capacity hexU64      `json:"capacity"`
	Lock     *wireScript `json:"lock"`
	Type     *wireScript `json:"type"`
}

type wireCellDep struct {
	OutPoint wireOutPoint `json:"out_point"`
	DepType  string       `json:"dep_type"`
}

type wireTx struct {
	Version     hexU64        `json:"version"`
	CellDeps    []wireCellDep `json:"cell_deps"`
	HeaderDeps  []hexHash     `json:"header_deps"`
	Inputs      []wireInput   `json:"inputs"`
	Outputs     []wireOutput  `json:"outputs"`
	OutputsData []hexBytes    `json:"outputs_data"`
	Witnesses   []hexBytes    `json:"witnesses"`
}

func txToWire(tx *types.Transaction) *wireTx {
	w := &wireTx{
		Version:     hexU64(tx.Version),
		CellDeps:    make([]wireCellDep, 0, len(tx.CellDeps)),
		HeaderDeps:  make([]hexHash, 0, len(tx.HeaderDeps)),
		Inputs:      make([]wireInput, 0, len(tx.Inputs)),
		Outputs:     make([]wireOutput, 0, len(tx.Outputs)),
		OutputsData: make([]hexBytes, 0, len(tx.OutputsData)),
		Witnesses:   make([]hexBytes, 0, len(tx.Witnesses)),
	}
	for _, dep := range tx.CellDeps {
		w.CellDeps = append(w.CellDeps, wireCellDep{
			OutPoint: wireOutPoint{TxHash: hexHash(dep.TxHash), Index: hexU64(dep.Index)},
			DepType:  "code",
		})
	}
	for _, dep := range tx.HeaderDeps {
		w.HeaderDeps = append(w.HeaderDeps, hexHash(dep))
	}
	for _, in := range tx.Inputs {
		w.Inputs = append(w.Inputs, wireInput{
			Since:          hexU64(in.Since),
			PreviousOutput: wireOutPoint{TxHash: hexHash(in.PreviousOutput.TxHash), Index: hexU64(in.PreviousOutput.Index)},
		})
	}
	for i := range tx.Outputs {
		out := &tx.Outputs[i]
		w.Outputs = append(w.Outputs, wireOutput{
			Capacity: hexU64(out.Capacity),
			Lock:     scriptToWire(&out.Lock),
			Type:     scriptToWire(out.Type),
		})
	}
	for _, data := range tx.OutputsData {
		w.OutputsData = append(w.OutputsData, hexBytes(data))
	}
	for _, witness := range tx.Witnesses {
		w.Witnesses = append(w.Witnesses, hexBytes(witness))
	}
	return w
}

// wireCell is one object of the indexer's get_cells response.
type wireCell struct {
	OutPoint   wireOutPoint `json:"out_point"`
	Output     wireOutput   `json:"output"`
	OutputData hexBytes     `json:"output_data"`
}

func (w *wireCell) toCellInfo() (types.CellInfo, error) {
	lock, err := w.Output.Lock.toScript()
	if err != nil {
		return types.CellInfo{}, err
	}
	if lock == nil {
		return types.CellInfo{}, fmt.Errorf("cell %s:%d has no lock script",
			types.Hash(w.OutPoint.TxHash), uint64(w.OutPoint.Index))
	}
	typ, err := w.Output.Type.toScript()
	if err != nil {
		return types.CellInfo{}, err
	}
	return types.CellInfo{
		OutPoint: types.OutPoint{TxHash: types.Hash(w.OutPoint.TxHash), Index: uint32(w.OutPoint.Index)},
		Output: types.CellOutput{
			Capacity: uint64(w.Output.Capacity),
			Lock:     *lock,
			Type:     typ,
		},
		Data: []byte(w.OutputData),
	}, nil
}
