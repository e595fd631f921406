package commands

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lightring/lightring/types"
)

// StatusCmd prints the combined on-chain and local status; the driver
// constructor logs it as part of its startup checks.
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "print the on-chain ring-buffer status and the local proof store window",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, err := loadDriver(cmd)
			return err
		},
	}
}

// CreateCmd bootstraps the ring-buffer family from a file of header
// updates, then persists the minted type id back into the config file.
func CreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create UPDATES_FILE",
		Short: "bootstrap the on-chain multi-client family from a batch of header updates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, cfg, err := loadDriver(cmd)
			if err != nil {
				return err
			}
			updates, err := loadUpdates(args[0])
			if err != nil {
				return err
			}
			if err := d.CreateClients(cmd.Context(), updates); err != nil {
				return err
			}
			return persistTypeID(cfg.ClientTypeArgs.TypeID)
		},
	}
}

// UpdateCmd rotates the ring with a batch of header updates.
func UpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update UPDATES_FILE",
		Short: "rotate the on-chain multi-client family with a batch of header updates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, _, err := loadDriver(cmd)
			if err != nil {
				return err
			}
			updates, err := loadUpdates(args[0])
			if err != nil {
				return err
			}
			return d.UpdateClients(cmd.Context(), updates)
		},
	}
}

// headerUpdateJSON is the file form of one header update.
type headerUpdateJSON struct {
	Slot        uint64 `json:"slot"`
	HeaderRoot  string `json:"header_root"`
	Attestation string `json:"attestation"`
}

// loadUpdates reads a JSON array of header updates from path.
func loadUpdates(path string) ([]*types.HeaderUpdate, error) {
	bz, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading updates file: %w", err)
	}
	var raw []headerUpdateJSON
	if err := json.Unmarshal(bz, &raw); err != nil {
		return nil, fmt.Errorf("parsing updates file %s: %w", path, err)
	}

	updates := make([]*types.HeaderUpdate, 0, len(raw))
	for i, r := range raw {
		root, err := types.HashFromHex(r.HeaderRoot)
		if err != nil {
			return nil, fmt.Errorf("update #%d: header_root: %w", i, err)
		}
		attestation, err := hex.DecodeString(strings.TrimPrefix(r.Attestation, "0x"))
		if err != nil {
			return nil, fmt.Errorf("update #%d: attestation: %w", i, err)
		}
		updates = append(updates, &types.HeaderUpdate{
			Slot:        types.Slot(r.Slot),
			HeaderRoot:  root,
			Attestation: attestation,
		})
	}
	return updates, nil
}

// persistTypeID writes the minted family type id back into the config file
// so later runs target the bootstrapped family.
func persistTypeID(typeID string) error {
	v := viper.New()
	v.SetConfigFile(configPath())
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config for type id persistence: %w", err)
	}
	v.Set("client_type_args.type_id", typeID)
	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("persisting type id: %w", err)
	}
	return nil
}
