// Package commands holds the lightring CLI: one command per driver
// workflow, wired around a home directory holding the config file, the key
// files and the local proof store.
package commands

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	dbm "github.com/tendermint/tm-db"

	"github.com/lightring/lightring/config"
	"github.com/lightring/lightring/keyring"
	"github.com/lightring/lightring/libs/log"
	"github.com/lightring/lightring/light"
	rpchttp "github.com/lightring/lightring/rpc/http"
	dbs "github.com/lightring/lightring/store/db"
	"github.com/lightring/lightring/verifier"
)

var (
	homeDir    string
	logLevel   string
	logFormat  string
	promListen string
)

// RootCmd constructs the root command with the persistent flags every
// subcommand shares.
func RootCmd() *cobra.Command {
	defaultHome := ".lightring"
	if home, err := os.UserHomeDir(); err == nil {
		defaultHome = filepath.Join(home, ".lightring")
	}

	cmd := &cobra.Command{
		Use:   "lightring",
		Short: "maintain an on-chain light-client ring buffer",
		Long: `lightring drives the multi-cell light client of one source chain:
it bootstraps the on-chain ring-buffer family, keeps rotating it with
verified header updates and mirrors the verified window in a local proof
store.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&homeDir, "home", defaultHome, "directory for config, keys and data")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", log.LogLevelInfo, "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&logFormat, "log-format", log.LogFormatPlain, "log format (plain|json)")
	cmd.PersistentFlags().StringVar(&promListen, "prometheus-listen", "", "serve Prometheus metrics on this address (empty disables)")
	return cmd
}

func configPath() string {
	return filepath.Join(homeDir, "config.toml")
}

func keysDir() string {
	return filepath.Join(homeDir, "keys")
}

func newLogger() (log.Logger, error) {
	return log.NewDefaultLogger(logFormat, logLevel)
}

// loadDriver assembles a ready driver from the home directory: config,
// JSON-RPC client, key files and the goleveldb-backed proof store.
func loadDriver(cmd *cobra.Command) (*light.Driver, *config.ChainConfig, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(configPath())
	if err != nil {
		return nil, nil, err
	}

	dataDir := cfg.DataDir
	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(homeDir, dataDir)
	}
	db, err := dbm.NewGoLevelDB("proofstore", dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening proof store: %w", err)
	}

	options := []light.Option{
		light.Logger(logger),
		light.WithVerifier(verifier.New()),
	}
	if promListen != "" {
		options = append(options, light.WithMetrics(light.PrometheusMetrics("lightring")))
		go func() {
			if err := http.ListenAndServe(promListen, promhttp.Handler()); err != nil {
				logger.Error("metrics listener stopped", "err", err)
			}
		}()
	}

	d, err := light.NewDriver(
		cmd.Context(),
		cfg,
		rpchttp.New(cfg.RPCAddr, cfg.IndexerAddr),
		keyring.NewDirKeyRing(keysDir()),
		dbs.New(db, cfg.ID),
		options...,
	)
	if err != nil {
		return nil, nil, err
	}
	return d, cfg, nil
}
