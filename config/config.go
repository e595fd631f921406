// Package config defines the chain driver's configuration and its file
// loading.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/lightring/lightring/types"
)

// ClientTypeArgs is the configuration form of a ring-buffer family
// identity. TypeID is empty until the family has been bootstrapped; the
// create workflow mints it and it must then be persisted here.
type ClientTypeArgs struct {
	TypeID     string `mapstructure:"type_id"`
	CellsCount uint8  `mapstructure:"cells_count"`
}

// ChainConfig configures one chain driver instance.
type ChainConfig struct {
	// ID is the source chain identifier used in logs and errors.
	ID string `mapstructure:"id"`

	// RPCAddr and IndexerAddr point at the ledger node and its indexer.
	RPCAddr     string `mapstructure:"rpc_addr"`
	IndexerAddr string `mapstructure:"indexer_addr"`

	// KeyName names the signing key in the key ring.
	KeyName string `mapstructure:"key_name"`

	// DataDir holds the local proof store.
	DataDir string `mapstructure:"data_dir"`

	// MinimalUpdatesCount is the family's batching-size policy, written
	// into the info cell at bootstrap.
	MinimalUpdatesCount uint8 `mapstructure:"minimal_updates_count"`

	// LockTypeArgs and ContractTypeArgs are the hex type-id args of the
	// deployed light-client lock and contract code cells.
	LockTypeArgs     string `mapstructure:"lightclient_lock_typeargs"`
	ContractTypeArgs string `mapstructure:"lightclient_contract_typeargs"`

	ClientTypeArgs ClientTypeArgs `mapstructure:"client_type_args"`
}

// DefaultChainConfig returns a config with sane placeholders for a devnet.
func DefaultChainConfig() *ChainConfig {
	return &ChainConfig{
		ID:                  "eth-mainnet",
		RPCAddr:             "http://127.0.0.1:8114",
		IndexerAddr:         "http://127.0.0.1:8116",
		KeyName:             "relayer",
		DataDir:             "data",
		MinimalUpdatesCount: 10,
		ClientTypeArgs:      ClientTypeArgs{CellsCount: 5},
	}
}

// ValidateBasic performs stateless checks on the config.
func (c *ChainConfig) ValidateBasic() error {
	if c.ID == "" {
		return errors.New("missing chain id")
	}
	if c.KeyName == "" {
		return errors.New("missing key name")
	}
	if c.ClientTypeArgs.CellsCount < types.MinCellsCount {
		return fmt.Errorf("cells_count must be at least %d, got %d",
			types.MinCellsCount, c.ClientTypeArgs.CellsCount)
	}
	if _, err := c.LockArgs(); err != nil {
		return fmt.Errorf("lightclient_lock_typeargs: %w", err)
	}
	if _, err := c.ContractArgs(); err != nil {
		return fmt.Errorf("lightclient_contract_typeargs: %w", err)
	}
	if _, err := c.TypeID(); err != nil {
		return fmt.Errorf("client_type_args.type_id: %w", err)
	}
	return nil
}

// TypeID decodes the configured family type id, nil when not yet minted.
func (c *ChainConfig) TypeID() (*types.Hash, error) {
	if c.ClientTypeArgs.TypeID == "" {
		return nil, nil
	}
	h, err := types.HashFromHex(c.ClientTypeArgs.TypeID)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// SetTypeID records a freshly minted family type id.
func (c *ChainConfig) SetTypeID(h types.Hash) {
	c.ClientTypeArgs.TypeID = h.String()
}

// LockArgs decodes the deployed lock's type-id args.
func (c *ChainConfig) LockArgs() ([]byte, error) {
	return decodeHexArgs(c.LockTypeArgs)
}

// ContractArgs decodes the deployed contract's type-id args.
func (c *ChainConfig) ContractArgs() ([]byte, error) {
	return decodeHexArgs(c.ContractTypeArgs)
}

func decodeHexArgs(s string) ([]byte, error) {
	if s == "" {
		return nil, errors.New("empty")
	}
	if len(s) >= 2 && s[0:2] == "0x" {
		s = s[2:]
	}
	return hex.DecodeString(s)
}

// Load reads a ChainConfig from the given file (TOML, YAML or JSON,
// selected by extension).
func Load(path string) (*ChainConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := DefaultChainConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}
