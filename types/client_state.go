package types

import "fmt"

// ClientKind tags the chain family a client-state value belongs to.
type ClientKind byte

const (
	ClientKindEth ClientKind = iota + 1
	ClientKindCkb
)

func (k ClientKind) String() string {
	switch k {
	case ClientKindEth:
		return "eth"
	case ClientKindCkb:
		return "ckb"
	default:
		return fmt.Sprintf("unknown(%d)", byte(k))
	}
}

// EthClientState is the source-chain client state carried by relayed
// messages; it wraps the light client update for one slot.
type EthClientState struct {
	ChainID          string
	LightClientUpdate *HeaderUpdate
}

// CkbClientState is the host-chain client state: presence of a bootstrapped
// ring-buffer family for the given source chain.
type CkbClientState struct {
	ChainID string
}

// AnyClientState is the tagged union routing per-chain client-state values.
// Exactly one variant is set, named by Kind.
type AnyClientState struct {
	Kind ClientKind
	Eth  *EthClientState
	Ckb  *CkbClientState
}

// NewEthClientState wraps an Ethereum client state.
func NewEthClientState(s *EthClientState) AnyClientState {
	return AnyClientState{Kind: ClientKindEth, Eth: s}
}

// NewCkbClientState wraps a CKB client state.
func NewCkbClientState(s *CkbClientState) AnyClientState {
	return AnyClientState{Kind: ClientKindCkb, Ckb: s}
}

// ChainID returns the identifier of the chain the state belongs to.
func (s AnyClientState) ChainID() string {
	switch s.Kind {
	case ClientKindEth:
		return s.Eth.ChainID
	case ClientKindCkb:
		return s.Ckb.ChainID
	default:
		return ""
	}
}

// LatestSlot returns the most recent slot the state attests to, or 0 when
// the variant carries no slot information.
func (s AnyClientState) LatestSlot() Slot {
	switch s.Kind {
	case ClientKindEth:
		if s.Eth.LightClientUpdate != nil {
			return s.Eth.LightClientUpdate.Slot
		}
		return 0
	default:
		return 0
	}
}

// ValidateBasic checks that the tag and the set variant agree.
func (s AnyClientState) ValidateBasic() error {
	switch s.Kind {
	case ClientKindEth:
		if s.Eth == nil {
			return fmt.Errorf("client state tagged %s with no value", s.Kind)
		}
	case ClientKindCkb:
		if s.Ckb == nil {
			return fmt.Errorf("client state tagged %s with no value", s.Kind)
		}
	default:
		return fmt.Errorf("unknown client state kind %d", byte(s.Kind))
	}
	return nil
}
