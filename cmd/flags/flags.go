package flags

import (
	"errors"
	"io/fs"
	"log"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/ruteri/land-certificate-registry/common"
	"github.com/ruteri/land-certificate-registry/httpserver"
	"github.com/urfave/cli/v2"
)

// LoadEnv populates the process environment from a .env file in the working directory, if any.
// Flags bound to environment variables pick the values up afterwards.
func LoadEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: Could not load .env file: %v", err)
	}
}

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String("log-service")

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger) *httpserver.HTTPServerConfig {
	listenAddr := cCtx.String(ListenAddrFlag.Name)
	metricsAddr := cCtx.String(MetricsAddrFlag.Name)
	enablePprof := cCtx.Bool(PprofFlag.Name)
	drainDuration := time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second

	return &httpserver.HTTPServerConfig{
		ListenAddr:               listenAddr,
		MetricsAddr:              metricsAddr,
		Log:                      logger,
		EnablePprof:              enablePprof,
		DrainDuration:            drainDuration,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}
}

var RpcAddrFlag = &cli.StringFlag{
	Name:    "rpc-addr",
	Value:   "",
	EnvVars: []string{"RPC_ADDR"},
	Usage:   "address to connect to RPC. Accounts are derived locally when empty",
}

var ListenAddrFlag = &cli.StringFlag{
	Name:    "listen-addr",
	Value:   "127.0.0.1:8080",
	EnvVars: []string{"LISTEN_ADDR"},
	Usage:   "address to listen on for API",
}

var ServerAddrFlag = &cli.StringFlag{
	Name:    "server-addr",
	Value:   "http://127.0.0.1:8080",
	EnvVars: []string{"REGISTRY_SERVER_ADDR"},
	Usage:   "registry server address to request",
}

var AdminAddrFlag = &cli.StringFlag{
	Name:     "admin-address",
	Required: true,
	EnvVars:  []string{"ADMIN_ADDRESS"},
	Usage:    "address allowed to issue and update certificates",
}

var AdminKeyFlag = &cli.StringFlag{
	Name:    "admin-key",
	EnvVars: []string{"ADMIN_PRIVATE_KEY"},
	Usage:   "hex-encoded private key used to sign administrator requests",
}

var TokenContractFlag = &cli.StringFlag{
	Name:     "token-contract",
	Required: true,
	EnvVars:  []string{"TOKEN_CONTRACT"},
	Usage:    "address of the certificate registry contract the accounts are bound to",
}

var AccountRegistryFlag = &cli.StringFlag{
	Name:    "account-registry",
	Value:   "0x02101dfB77FDE026414827Fdc604ddAF224F0921",
	EnvVars: []string{"ACCOUNT_REGISTRY"},
	Usage:   "address of the ERC-6551 account registry",
}

var AccountImplementationFlag = &cli.StringFlag{
	Name:     "account-implementation",
	Required: true,
	EnvVars:  []string{"ACCOUNT_IMPLEMENTATION"},
	Usage:    "address of the token-bound account implementation",
}

var ChainIDFlag = &cli.Int64Flag{
	Name:    "chain-id",
	Value:   1,
	EnvVars: []string{"CHAIN_ID"},
	Usage:   "chain id the certificates live on. Ignored when connected to an RPC",
}

var FactoryKeyFlag = &cli.StringFlag{
	Name:    "factory-key",
	EnvVars: []string{"FACTORY_PRIVATE_KEY"},
	Usage:   "hex-encoded private key paying for account creation transactions",
}

var StoreFlag = &cli.StringSliceFlag{
	Name:    "store",
	Value:   cli.NewStringSlice("memory://"),
	EnvVars: []string{"METADATA_STORES"},
	Usage:   "metadata store location URI (memory://, file://, redis://, s3://). May be repeated",
}

var CalendarDatesFlag = &cli.BoolFlag{
	Name:    "calendar-dates",
	Value:   false,
	EnvVars: []string{"CALENDAR_DATES"},
	Usage:   "render survey dates as calendar dates instead of raw seconds",
}

var EscapeDescriptorsFlag = &cli.BoolFlag{
	Name:    "escape-descriptors",
	Value:   false,
	EnvVars: []string{"ESCAPE_DESCRIPTORS"},
	Usage:   "escape JSON special characters in rendered descriptors",
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}

var LogServiceFlagFn = func(service string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "log-service",
		Value: service,
		Usage: "add 'service' tag to logs",
	}
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}
var MetricsAddrFlag = &cli.StringFlag{
	Name:    "metrics-addr",
	Value:   "127.0.0.1:8090",
	EnvVars: []string{"METRICS_ADDR"},
	Usage:   "address to listen on for Prometheus metrics",
}

var CommonFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	PprofFlag,
	DrainSecondsFlag,
	MetricsAddrFlag,
}
