package accounts

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient/simulated"
	"github.com/ruteri/land-certificate-registry/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	// Runtime code that accepts every call.
	stopRuntime = []byte{0x00}
	// Runtime code that reverts every call: PUSH1 0 PUSH1 0 REVERT.
	revertRuntime = []byte{0x60, 0x00, 0x60, 0x00, 0xfd}
)

// deployRuntime deploys a contract whose code is runtime and mines it.
func deployRuntime(t *testing.T, backend *simulated.Backend, auth *bind.TransactOpts, runtime []byte) common.Address {
	t.Helper()

	// CODECOPY the runtime that follows this 12 byte prefix and RETURN it.
	size := byte(len(runtime))
	initCode := append([]byte{0x60, size, 0x60, 0x0c, 0x60, 0x00, 0x39, 0x60, size, 0x60, 0x00, 0xf3}, runtime...)

	addr, _, _, err := bind.DeployContract(auth, abi.ABI{}, initCode, backend.Client())
	require.NoError(t, err)
	backend.Commit()

	code, err := backend.Client().CodeAt(context.Background(), addr, nil)
	require.NoError(t, err)
	require.Equal(t, runtime, code)
	return addr
}

// registryChain fronts a simulated chain for the registry client. It answers the
// registry's account view with the CREATE2 derivation, reports code for accounts whose
// createAccount transaction succeeded and mines every transaction it sends.
type registryChain struct {
	simulated.Client

	backend  *simulated.Backend
	registry common.Address
	abi      abi.ABI

	mutex   sync.Mutex
	sent    int
	created map[common.Address]bool
}

func newRegistryChain(t *testing.T, backend *simulated.Backend, registry common.Address) *registryChain {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(RegistryABI))
	require.NoError(t, err)

	return &registryChain{
		Client:   backend.Client(),
		backend:  backend,
		registry: registry,
		abi:      parsed,
		created:  make(map[common.Address]bool),
	}
}

func (c *registryChain) requestFrom(method string, data []byte) (interfaces.AccountRequest, error) {
	args, err := c.abi.Methods[method].Inputs.Unpack(data[4:])
	if err != nil {
		return interfaces.AccountRequest{}, err
	}

	tokenID, err := interfaces.CertificateIDFromBig(args[3].(*big.Int))
	if err != nil {
		return interfaces.AccountRequest{}, err
	}
	return interfaces.AccountRequest{
		Implementation: args[0].(common.Address),
		ChainID:        args[1].(*big.Int),
		TokenContract:  args[2].(common.Address),
		TokenID:        tokenID,
		Salt:           args[4].(*big.Int),
	}, nil
}

func (c *registryChain) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	req, err := c.requestFrom("account", msg.Data)
	if err != nil {
		return nil, err
	}
	account, err := ComputeAddress(c.registry, req)
	if err != nil {
		return nil, err
	}
	return c.abi.Methods["account"].Outputs.Pack(account)
}

func (c *registryChain) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	c.mutex.Lock()
	created := c.created[account]
	c.mutex.Unlock()

	if created {
		return stopRuntime, nil
	}
	return c.Client.CodeAt(ctx, account, blockNumber)
}

func (c *registryChain) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := c.Client.SendTransaction(ctx, tx); err != nil {
		return err
	}
	c.backend.Commit()

	receipt, err := c.Client.TransactionReceipt(ctx, tx.Hash())
	if err != nil {
		return err
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.sent++
	if receipt.Status == types.ReceiptStatusSuccessful {
		req, err := c.requestFrom("createAccount", tx.Data())
		if err != nil {
			return err
		}
		account, err := ComputeAddress(c.registry, req)
		if err != nil {
			return err
		}
		c.created[account] = true
	}
	return nil
}

func (c *registryChain) transactions() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.sent
}

func TestRegistryClient_CreateOrReturn(t *testing.T) {
	backend, auth := setupTestChain(t)
	ctx := context.Background()

	registryAddr := deployRuntime(t, backend, auth, stopRuntime)
	chain := newRegistryChain(t, backend, registryAddr)

	client, err := NewRegistryClient(chain, chain, registryAddr, testLogger())
	require.NoError(t, err)

	req := testRequest(42)
	req.ChainID = big.NewInt(1337)
	expected, err := ComputeAddress(registryAddr, req)
	require.NoError(t, err)

	// Deriving works without a transactor; creating does not.
	account, err := client.Account(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, expected, account)
	_, err = client.CreateAccount(ctx, req)
	assert.ErrorIs(t, err, ErrNoTransactOpts)

	client.SetTransactOpts(auth)

	account, err = client.CreateAccount(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, expected, account)
	assert.Equal(t, 1, chain.transactions())

	// Once the account has code it is returned without another transaction.
	again, err := client.CreateAccount(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, expected, again)
	assert.Equal(t, 1, chain.transactions())

	binder, err := NewBinder(client, BinderConfig{
		TokenContract:  testTokenContract,
		Implementation: testImplementation,
		ChainID:        big.NewInt(1337),
	}, testLogger())
	require.NoError(t, err)

	bound, err := binder.Bind(ctx, interfaces.NewCertificateID(42))
	require.NoError(t, err)
	assert.Equal(t, expected, bound)
	assert.Equal(t, 1, chain.transactions())

	other, err := binder.Bind(ctx, interfaces.NewCertificateID(43))
	require.NoError(t, err)
	assert.NotEqual(t, expected, other)
	assert.Equal(t, 2, chain.transactions())
}

func TestRegistryClient_RevertedTransaction(t *testing.T) {
	backend, auth := setupTestChain(t)
	ctx := context.Background()

	registryAddr := deployRuntime(t, backend, auth, revertRuntime)
	chain := newRegistryChain(t, backend, registryAddr)

	client, err := NewRegistryClient(chain, chain, registryAddr, testLogger())
	require.NoError(t, err)

	// Gas estimation would fail on a reverting call; a fixed limit gets the
	// transaction mined so the receipt status is what fails.
	opts := *auth
	opts.GasLimit = 200000
	client.SetTransactOpts(&opts)

	req := testRequest(7)
	req.ChainID = big.NewInt(1337)
	_, err = client.CreateAccount(ctx, req)
	assert.ErrorIs(t, err, ErrTransactionReverted)
	assert.Equal(t, 1, chain.transactions())

	binder, err := NewBinder(client, BinderConfig{
		TokenContract:  testTokenContract,
		Implementation: testImplementation,
		ChainID:        big.NewInt(1337),
	}, testLogger())
	require.NoError(t, err)

	_, err = binder.Bind(ctx, interfaces.NewCertificateID(7))
	assert.ErrorIs(t, err, interfaces.ErrBindingFailed)
	assert.ErrorIs(t, err, ErrTransactionReverted)
}
