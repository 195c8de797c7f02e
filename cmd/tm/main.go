// Command tm is the TileMaster terminal client: inventory, customer
// book, and employee roster for a tile shop, synced to a remote store
// when one is configured and to a local database otherwise.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"tilemaster/internal/config"
	"tilemaster/internal/schema"
	"tilemaster/internal/state"
	"tilemaster/internal/store"
	"tilemaster/internal/store/local"
	"tilemaster/internal/store/remote"
	syncengine "tilemaster/internal/sync"
)

var rootCmd = &cobra.Command{
	Use:   "tm",
	Short: "TileMaster - tile shop management",
	Long: `TileMaster manages a tile shop: stock, customers, and staff.

Data lives in a remote libSQL database when one is configured
(tm config init), otherwise in a local database under ~/.tilemaster.
Every edit is synced in the background; the CLI never waits on the
network.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: "shop", Title: "Shop Commands:"},
		&cobra.Group{ID: "data", Title: "Data Commands:"},
		&cobra.Group{ID: "advanced", Title: "Advanced Commands:"},
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// appContext bundles everything a command needs: loaded config, wired
// engine, populated state, and the handles to close on the way out.
type appContext struct {
	cfg    *config.Config
	app    *state.App
	engine *syncengine.Engine
	remote *remote.Client
	local  *local.Store
	logger *log.Logger

	logCloser io.Closer
}

// openApp wires the full stack and loads all collections. Exactly one
// persistence path is active: the remote store when configured,
// otherwise the local fallback.
func openApp(ctx context.Context) (*appContext, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, logCloser := config.NewLogger(cfg, "[tm] ")

	ac := &appContext{cfg: cfg, logger: logger, logCloser: logCloser}

	var remoteStore store.RemoteStore
	var localStore store.FallbackStore
	if cfg.RemoteURL != "" {
		client, err := remote.Open(cfg.RemoteURL, cfg.RemoteToken)
		if err != nil {
			logCloser.Close()
			return nil, err
		}
		ac.remote = client
		remoteStore = client
	} else {
		db, err := local.Open(cfg.LocalPath)
		if err != nil {
			logCloser.Close()
			return nil, err
		}
		ac.local = db
		localStore = db
	}

	ac.engine = syncengine.New(remoteStore, localStore, logger)
	ac.app = state.New(ac.engine)
	ac.app.Load(ctx, loadSeed(cfg, logger))
	return ac, nil
}

// Close flushes pending saves and releases every handle. Safe to call
// once per appContext.
func (ac *appContext) Close() {
	ac.app.Flush()
	if ac.remote != nil {
		_ = ac.remote.Close()
	}
	if ac.local != nil {
		_ = ac.local.Close()
	}
	_ = ac.logCloser.Close()
}

func loadSeed(cfg *config.Config, logger *log.Logger) *schema.SeedCatalog {
	if cfg.SeedFile == "" {
		return schema.DefaultSeed()
	}
	catalog, err := schema.LoadSeedFile(cfg.SeedFile)
	if err != nil {
		logger.Printf("seed file %s unusable, using built-in seed: %v", cfg.SeedFile, err)
		return schema.DefaultSeed()
	}
	return catalog
}
