package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ruteri/land-certificate-registry/interfaces"
)

// ErrNoTransactOpts is returned when a transaction is attempted without first setting transaction options.
var ErrNoTransactOpts = errors.New("no authorized transactor available")

// ErrTransactionReverted is returned when the createAccount transaction was mined but failed.
var ErrTransactionReverted = errors.New("createAccount transaction reverted")

// RegistryABI is the interface of the ERC-6551 account registry the client talks to.
const RegistryABI = `[
	{"type":"function","name":"createAccount","stateMutability":"nonpayable",
	 "inputs":[
		{"name":"implementation","type":"address"},
		{"name":"chainId","type":"uint256"},
		{"name":"tokenContract","type":"address"},
		{"name":"tokenId","type":"uint256"},
		{"name":"salt","type":"uint256"},
		{"name":"initData","type":"bytes"}],
	 "outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"account","stateMutability":"view",
	 "inputs":[
		{"name":"implementation","type":"address"},
		{"name":"chainId","type":"uint256"},
		{"name":"tokenContract","type":"address"},
		{"name":"tokenId","type":"uint256"},
		{"name":"salt","type":"uint256"}],
	 "outputs":[{"name":"","type":"address"}]},
	{"type":"event","name":"AccountCreated","anonymous":false,
	 "inputs":[
		{"name":"account","type":"address","indexed":false},
		{"name":"implementation","type":"address","indexed":false},
		{"name":"chainId","type":"uint256","indexed":false},
		{"name":"tokenContract","type":"address","indexed":false},
		{"name":"tokenId","type":"uint256","indexed":false},
		{"name":"salt","type":"uint256","indexed":false}]}
]`

// RegistryClient implements interfaces.AccountFactory against an ERC-6551 registry
// contract deployed on an Ethereum-compatible chain.
type RegistryClient struct {
	contract *bind.BoundContract
	abi      abi.ABI
	client   bind.ContractBackend
	backend  bind.DeployBackend
	address  common.Address
	auth     *bind.TransactOpts
	log      *slog.Logger
}

// NewRegistryClient creates a new client for the account registry at the specified address.
// It requires a ContractBackend for reading from the blockchain and a DeployBackend for
// waiting on transactions.
func NewRegistryClient(client bind.ContractBackend, backend bind.DeployBackend, address common.Address, log *slog.Logger) (*RegistryClient, error) {
	parsed, err := abi.JSON(strings.NewReader(RegistryABI))
	if err != nil {
		return nil, err
	}

	return &RegistryClient{
		contract: bind.NewBoundContract(address, parsed, client, client, client),
		abi:      parsed,
		client:   client,
		backend:  backend,
		address:  address,
		log:      log,
	}, nil
}

// SetTransactOpts sets the transaction options required for creating accounts.
// Read-only derivation works without them.
func (c *RegistryClient) SetTransactOpts(auth *bind.TransactOpts) {
	c.auth = auth
}

// Address returns the registry contract address.
func (c *RegistryClient) Address() common.Address {
	return c.address
}

// Account asks the registry which address it assigns to req.
func (c *RegistryClient) Account(ctx context.Context, req interfaces.AccountRequest) (common.Address, error) {
	opts := &bind.CallOpts{Context: ctx}

	var out []interface{}
	err := c.contract.Call(opts, &out, "account",
		req.Implementation, req.ChainID, req.TokenContract, req.TokenID.Big(), saltOf(req))
	if err != nil {
		return common.Address{}, err
	}

	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// CreateAccount implements interfaces.AccountFactory. If the account already has code the
// existing address is returned without sending a transaction; otherwise createAccount is
// sent and the call blocks until the transaction is mined.
func (c *RegistryClient) CreateAccount(ctx context.Context, req interfaces.AccountRequest) (common.Address, error) {
	account, err := c.Account(ctx, req)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to derive account: %w", err)
	}

	code, err := c.client.CodeAt(ctx, account, nil)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to check account code: %w", err)
	}
	if len(code) > 0 {
		c.log.Debug("Bound account already deployed", slog.String("account", account.Hex()))
		return account, nil
	}

	if c.auth == nil {
		return common.Address{}, ErrNoTransactOpts
	}

	opts := *c.auth
	opts.Context = ctx

	initData := req.InitData
	if initData == nil {
		initData = []byte{}
	}

	tx, err := c.contract.Transact(&opts, "createAccount",
		req.Implementation, req.ChainID, req.TokenContract, req.TokenID.Big(), saltOf(req), initData)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to send createAccount: %w", err)
	}

	receipt, err := bind.WaitMined(ctx, c.backend, tx)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed waiting for createAccount: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return common.Address{}, fmt.Errorf("%w: tx %s", ErrTransactionReverted, tx.Hash().Hex())
	}

	c.log.Info("Bound account created on chain",
		slog.String("account", account.Hex()),
		slog.String("txHash", tx.Hash().Hex()),
		slog.Uint64("block", receipt.BlockNumber.Uint64()))

	return account, nil
}

// PackCreateAccount returns the calldata of createAccount for req.
func (c *RegistryClient) PackCreateAccount(req interfaces.AccountRequest) ([]byte, error) {
	initData := req.InitData
	if initData == nil {
		initData = []byte{}
	}
	return c.abi.Pack("createAccount",
		req.Implementation, req.ChainID, req.TokenContract, req.TokenID.Big(), saltOf(req), initData)
}
