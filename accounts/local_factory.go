package accounts

import (
	"context"
	"log/slog"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ruteri/land-certificate-registry/interfaces"
)

// LocalFactory is an in-process account factory. It derives addresses exactly as the
// on-chain ERC-6551 registry at Address would and remembers which accounts it created,
// so repeated requests return the existing account without creating a duplicate.
type LocalFactory struct {
	mutex    sync.RWMutex
	address  common.Address
	accounts map[common.Address]interfaces.AccountRequest
	log      *slog.Logger
}

// NewLocalFactory creates a factory that derives addresses as if deployed at address.
func NewLocalFactory(address common.Address, log *slog.Logger) *LocalFactory {
	return &LocalFactory{
		address:  address,
		accounts: make(map[common.Address]interfaces.AccountRequest),
		log:      log,
	}
}

// CreateAccount implements interfaces.AccountFactory.
func (f *LocalFactory) CreateAccount(ctx context.Context, req interfaces.AccountRequest) (common.Address, error) {
	if err := ctx.Err(); err != nil {
		return common.Address{}, err
	}

	account, err := ComputeAddress(f.address, req)
	if err != nil {
		return common.Address{}, err
	}

	f.mutex.Lock()
	defer f.mutex.Unlock()

	if _, exists := f.accounts[account]; exists {
		return account, nil
	}

	f.accounts[account] = req
	f.log.Debug("Created bound account",
		slog.String("account", account.Hex()),
		slog.String("tokenContract", req.TokenContract.Hex()),
		slog.String("tokenID", req.TokenID.String()))

	return account, nil
}

// Account returns the address for req without creating it.
func (f *LocalFactory) Account(req interfaces.AccountRequest) (common.Address, error) {
	return ComputeAddress(f.address, req)
}

// Created reports whether the account has been created.
func (f *LocalFactory) Created(account common.Address) bool {
	f.mutex.RLock()
	defer f.mutex.RUnlock()

	_, exists := f.accounts[account]
	return exists
}

// Count returns the number of created accounts.
func (f *LocalFactory) Count() int {
	f.mutex.RLock()
	defer f.mutex.RUnlock()

	return len(f.accounts)
}

// Address returns the address the factory derives from.
func (f *LocalFactory) Address() common.Address {
	return f.address
}
