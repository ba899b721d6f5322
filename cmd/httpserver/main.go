package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ruteri/land-certificate-registry/access"
	"github.com/ruteri/land-certificate-registry/accounts"
	"github.com/ruteri/land-certificate-registry/cmd/flags"
	"github.com/ruteri/land-certificate-registry/common"
	"github.com/ruteri/land-certificate-registry/descriptor"
	"github.com/ruteri/land-certificate-registry/events"
	"github.com/ruteri/land-certificate-registry/httpserver"
	"github.com/ruteri/land-certificate-registry/interfaces"
	"github.com/ruteri/land-certificate-registry/metrics"
	"github.com/ruteri/land-certificate-registry/ownership"
	"github.com/ruteri/land-certificate-registry/registry"
	"github.com/ruteri/land-certificate-registry/storage"
	"github.com/urfave/cli/v2"
)

var serverFlags = append([]cli.Flag{
	flags.RpcAddrFlag,
	flags.ListenAddrFlag,
	flags.AdminAddrFlag,
	flags.TokenContractFlag,
	flags.AccountRegistryFlag,
	flags.AccountImplementationFlag,
	flags.ChainIDFlag,
	flags.FactoryKeyFlag,
	flags.StoreFlag,
	flags.CalendarDatesFlag,
	flags.EscapeDescriptorsFlag,
	flags.LogServiceFlagFn("land-registry"),
}, flags.CommonFlags...)

func main() {
	flags.LoadEnv()

	app := &cli.App{
		Name:   "registry-server",
		Usage:  "Serve the land certificate registry API",
		Flags:  serverFlags,
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	admin, err := parseAddress(cCtx, flags.AdminAddrFlag)
	if err != nil {
		return err
	}
	tokenContract, err := parseAddress(cCtx, flags.TokenContractFlag)
	if err != nil {
		return err
	}
	accountRegistry, err := parseAddress(cCtx, flags.AccountRegistryFlag)
	if err != nil {
		return err
	}
	implementation, err := parseAddress(cCtx, flags.AccountImplementationFlag)
	if err != nil {
		return err
	}

	guard, err := access.NewSingleAdmin(admin)
	if err != nil {
		return err
	}

	factory, chainID, err := accountFactory(cCtx, logger, accountRegistry)
	if err != nil {
		return err
	}

	binder, err := accounts.NewBinder(factory, accounts.BinderConfig{
		TokenContract:  tokenContract,
		Implementation: implementation,
		ChainID:        chainID,
	}, logger)
	if err != nil {
		logger.Error("Failed to create account binder", "err", err)
		return err
	}

	store, err := storage.NewStoreFactory(logger).CreateMultiStore(cCtx.StringSlice(flags.StoreFlag.Name))
	if err != nil {
		logger.Error("Failed to create metadata store", "err", err)
		return err
	}
	logger.Info("Metadata store configured", "location", store.LocationURI())

	cfg := flags.ConfigureServer(cCtx, logger)
	cfg.Store = store

	metricsSrv, err := metrics.New(common.PackageName, cfg.MetricsAddr)
	if err != nil {
		logger.Error("Failed to create metrics server", "err", err)
		return err
	}
	registryMetrics := metrics.NewRegistryMetrics(common.PackageName, metricsSrv.Registry())

	var renderOpts []descriptor.Option
	if cCtx.Bool(flags.CalendarDatesFlag.Name) {
		renderOpts = append(renderOpts, descriptor.WithDateFormatter(descriptor.CalendarDateFormatter{}))
	}
	if cCtx.Bool(flags.EscapeDescriptorsFlag.Name) {
		renderOpts = append(renderOpts, descriptor.WithEscaping())
	}

	landRegistry, err := registry.NewLandRegistry(guard, ownership.NewStoreLedger(store, logger), store, binder, logger,
		registry.WithRenderer(descriptor.NewRenderer(renderOpts...)),
		registry.WithEventSink(events.Fanout{events.NewLogSink(logger), events.NewMetricsSink(registryMetrics)}),
		registry.WithMetrics(registryMetrics),
	)
	if err != nil {
		logger.Error("Failed to create registry", "err", err)
		return err
	}

	server, err := httpserver.New(cfg, httpserver.NewHandler(landRegistry, logger), metricsSrv)
	if err != nil {
		logger.Error("Failed to create server", "err", err)
		return err
	}

	logger.Info("Starting server", "admin", admin, "tokenContract", tokenContract, "chainId", chainID)
	server.RunInBackground()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

	logger.Info("Server is running, press Ctrl+C to stop")
	<-exit
	logger.Info("Shutdown signal received")

	server.Shutdown()
	logger.Info("Server shutdown complete")
	return nil
}

// accountFactory returns the on-chain account registry when an RPC is configured
// and a local deterministic factory otherwise.
func accountFactory(cCtx *cli.Context, logger *slog.Logger, registryAddr ethcommon.Address) (interfaces.AccountFactory, *big.Int, error) {
	rpcAddress := cCtx.String(flags.RpcAddrFlag.Name)
	if rpcAddress == "" {
		chainID := big.NewInt(cCtx.Int64(flags.ChainIDFlag.Name))
		logger.Info("No RPC configured, deriving accounts locally", "registry", registryAddr, "chainId", chainID)
		return accounts.NewLocalFactory(registryAddr, logger), chainID, nil
	}

	logger.Info("Connecting to Ethereum RPC", "address", rpcAddress)
	ethClient, err := ethclient.Dial(rpcAddress)
	if err != nil {
		logger.Error("Failed to dial RPC", "err", err)
		return nil, nil, err
	}

	chainID, err := ethClient.ChainID(context.Background())
	if err != nil {
		logger.Error("Failed to fetch chain id", "err", err)
		return nil, nil, err
	}

	client, err := accounts.NewRegistryClient(ethClient, ethClient, registryAddr, logger)
	if err != nil {
		return nil, nil, err
	}

	keyHex := cCtx.String(flags.FactoryKeyFlag.Name)
	if keyHex == "" {
		return nil, nil, errors.New("factory-key is required when creating accounts on-chain")
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(keyHex, "0x"))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid factory-key: %w", err)
	}
	auth, err := bind.NewKeyedTransactorWithChainID(key, chainID)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create transactor: %w", err)
	}
	client.SetTransactOpts(auth)

	logger.Info("Creating accounts on-chain", "registry", registryAddr, "sender", auth.From, "chainId", chainID)
	return client, chainID, nil
}

func parseAddress(cCtx *cli.Context, flag *cli.StringFlag) (ethcommon.Address, error) {
	value := cCtx.String(flag.Name)
	if !ethcommon.IsHexAddress(value) {
		return ethcommon.Address{}, fmt.Errorf("invalid %s: %q is not an address", flag.Name, value)
	}
	return ethcommon.HexToAddress(value), nil
}
