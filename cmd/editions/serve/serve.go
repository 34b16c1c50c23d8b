package serve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Arkiv-Network/editions/api"
	"github.com/Arkiv-Network/editions/editions/config"
	"github.com/Arkiv-Network/editions/editions/logs"
	"github.com/Arkiv-Network/editions/editions/node"
	"github.com/Arkiv-Network/editions/editions/registry"
	"github.com/Arkiv-Network/editions/editions/sqlstore"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/gofrs/flock"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var ErrAlreadyRunning = errors.New("another node is using the data directory")

func Serve() *cli.Command {
	cfg := struct {
		configFile string
		dataDir    string
		httpAddr   string
		nodeURL    string
		logLevel   string
	}{}
	return &cli.Command{
		Name:  "serve",
		Usage: "Run an edition ledger node",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "Path to the TOML config file, defaults to the XDG config location",
				EnvVars:     []string{"EDITIONS_CONFIG"},
				Destination: &cfg.configFile,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "Directory holding the ledger database",
				EnvVars:     []string{"EDITIONS_DATA_DIR"},
				Destination: &cfg.dataDir,
			},
			&cli.StringFlag{
				Name:        "http-addr",
				Usage:       "Listen address of the JSON-RPC and REST server",
				EnvVars:     []string{"EDITIONS_HTTP_ADDR"},
				Destination: &cfg.httpAddr,
			},
			&cli.StringFlag{
				Name:        "node-url",
				Usage:       "Ethereum node used to reach the registries",
				EnvVars:     []string{"EDITIONS_NODE_URL"},
				Destination: &cfg.nodeURL,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "trace, debug, info, warn, error or crit",
				EnvVars:     []string{"EDITIONS_LOG_LEVEL"},
				Destination: &cfg.logLevel,
			},
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer cancel()

			conf, err := config.Load(cfg.configFile)
			if err != nil {
				return err
			}

			if c.IsSet("data-dir") {
				conf.DataDir = cfg.dataDir
			}
			if c.IsSet("http-addr") {
				conf.HTTP.Addr = cfg.httpAddr
			}
			if c.IsSet("node-url") {
				conf.Ethereum.NodeURL = cfg.nodeURL
			}
			if c.IsSet("log-level") {
				conf.Log.Level = cfg.logLevel
			}

			err = conf.Validate()
			if err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			logCloser, err := config.SetupLogging(conf.Log)
			if err != nil {
				return err
			}
			defer logCloser.Close()

			err = os.MkdirAll(conf.DataDir, 0o700)
			if err != nil {
				return fmt.Errorf("failed to create data dir: %w", err)
			}

			lock := flock.New(filepath.Join(conf.DataDir, "LOCK"))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("failed to lock data dir: %w", err)
			}
			if !locked {
				return fmt.Errorf("%w: %s", ErrAlreadyRunning, conf.DataDir)
			}
			defer lock.Unlock()

			store, err := sqlstore.NewStore(filepath.Join(conf.DataDir, "editions.db"))
			if err != nil {
				return err
			}
			defer store.Close()

			eth, err := ethclient.DialContext(ctx, conf.Ethereum.NodeURL)
			if err != nil {
				return fmt.Errorf("failed to dial ethereum node: %w", err)
			}
			defer eth.Close()

			spec, err := conf.Genesis()
			if err != nil {
				return err
			}

			n, err := node.Open(ctx, store, registry.NewContractBackend(eth), conf.Ethereum.CallTimeout.Duration, &node.Genesis{
				Admin:         spec.Admin,
				MediaAddress:  spec.MediaAddress,
				MarketAddress: spec.MarketAddress,
				Alloc:         spec.Alloc,
			})
			if err != nil {
				return err
			}

			handler, rpcServer, err := api.NewHandler(api.NewEditionsAPI(n), api.Config{
				CORSOrigins: conf.HTTP.CORSOrigins,
				RateLimit:   conf.HTTP.RateLimit,
				Burst:       conf.HTTP.Burst,
			})
			if err != nil {
				return err
			}
			defer rpcServer.Stop()

			log.Info("node started",
				"dataDir", conf.DataDir,
				"ethereum", conf.Ethereum.NodeURL,
				"admin", spec.Admin,
			)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return api.Serve(gctx, conf.HTTP.Addr, handler)
			})
			g.Go(func() error {
				return logEvents(gctx, n)
			})

			err = g.Wait()
			if err != nil {
				return err
			}

			log.Info("node stopped")

			return nil
		},
	}
}

// logEvents traces committed ledger events until ctx is done.
func logEvents(ctx context.Context, n *node.Node) error {
	ch := make(chan logs.Event, 64)
	sub := n.Ledger().SubscribeEvents(ch)
	defer sub.Unsubscribe()

	for {
		select {
		case ev := <-ch:
			log.Debug("ledger event", "event", logs.Name(ev.Log().Topics[0]), "data", ev)
		case err := <-sub.Err():
			return err
		case <-ctx.Done():
			return nil
		}
	}
}
