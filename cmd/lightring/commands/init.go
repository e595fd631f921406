package commands

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lightring/lightring/config"
	"github.com/lightring/lightring/keyring"
)

// InitCmd scaffolds the home directory: a default config file and a fresh
// signing key. Existing files are left alone.
func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "initialize the home directory with a config file and a signing key",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(keysDir(), 0o700); err != nil {
				return err
			}

			cfg := config.DefaultChainConfig()

			cfgPath := configPath()
			if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
				if err := writeConfig(cfgPath, cfg); err != nil {
					return err
				}
				logger.Info("wrote default config", "path", cfgPath)
			} else {
				logger.Info("config already exists, skipping", "path", cfgPath)
			}

			keyPath := filepath.Join(keysDir(), cfg.KeyName+".key")
			if _, err := os.Stat(keyPath); os.IsNotExist(err) {
				key, err := keyring.NewKeyPair()
				if err != nil {
					return err
				}
				encoded := hex.EncodeToString(key.PrivKeyBytes())
				if err := os.WriteFile(keyPath, []byte(encoded+"\n"), 0o600); err != nil {
					return err
				}
				logger.Info("generated signing key", "path", keyPath)
			} else {
				logger.Info("signing key already exists, skipping", "path", keyPath)
			}
			return nil
		},
	}
}

func writeConfig(path string, cfg *config.ChainConfig) error {
	v := viper.New()
	v.Set("id", cfg.ID)
	v.Set("rpc_addr", cfg.RPCAddr)
	v.Set("indexer_addr", cfg.IndexerAddr)
	v.Set("key_name", cfg.KeyName)
	v.Set("data_dir", cfg.DataDir)
	v.Set("minimal_updates_count", cfg.MinimalUpdatesCount)
	v.Set("lightclient_lock_typeargs", cfg.LockTypeArgs)
	v.Set("lightclient_contract_typeargs", cfg.ContractTypeArgs)
	v.Set("client_type_args.type_id", cfg.ClientTypeArgs.TypeID)
	v.Set("client_type_args.cells_count", cfg.ClientTypeArgs.CellsCount)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}
