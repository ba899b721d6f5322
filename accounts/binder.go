// Package accounts provisions the token-bound account of every issued certificate.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ruteri/land-certificate-registry/interfaces"
)

// BinderConfig holds the construction-time addresses of the binder.
type BinderConfig struct {
	// TokenContract is the address of the certificate registry itself.
	TokenContract common.Address
	// Implementation is the account implementation template.
	Implementation common.Address
	// ChainID is the network the certificates live on.
	ChainID *big.Int
}

// Binder builds the fixed account request for a certificate and hands it to the factory.
// Its addresses and chain id never change after construction.
type Binder struct {
	factory        interfaces.AccountFactory
	tokenContract  common.Address
	implementation common.Address
	chainID        *big.Int
	log            *slog.Logger
}

// NewBinder creates a binder for the given factory.
func NewBinder(factory interfaces.AccountFactory, cfg BinderConfig, log *slog.Logger) (*Binder, error) {
	if factory == nil {
		return nil, errors.New("account factory is required")
	}
	if cfg.Implementation == (common.Address{}) {
		return nil, errors.New("implementation address is required")
	}
	if cfg.ChainID == nil || cfg.ChainID.Sign() <= 0 {
		return nil, errors.New("chain id must be positive")
	}

	return &Binder{
		factory:        factory,
		tokenContract:  cfg.TokenContract,
		implementation: cfg.Implementation,
		chainID:        new(big.Int).Set(cfg.ChainID),
		log:            log,
	}, nil
}

// Request returns the deterministic argument tuple for id: salt zero, no init data.
func (b *Binder) Request(id interfaces.CertificateID) interfaces.AccountRequest {
	return interfaces.AccountRequest{
		Implementation: b.implementation,
		ChainID:        new(big.Int).Set(b.chainID),
		TokenContract:  b.tokenContract,
		TokenID:        id,
		Salt:           new(big.Int),
		InitData:       []byte{},
	}
}

// Bind creates or returns the bound account of id. Any factory failure, including a
// zero address result, is reported as interfaces.ErrBindingFailed. There is no retry.
func (b *Binder) Bind(ctx context.Context, id interfaces.CertificateID) (common.Address, error) {
	start := time.Now()

	account, err := b.factory.CreateAccount(ctx, b.Request(id))
	if err != nil {
		b.log.Warn("Account factory call failed",
			slog.String("certificateID", id.String()),
			"err", err)
		return common.Address{}, fmt.Errorf("%w: %w", interfaces.ErrBindingFailed, err)
	}

	if account == (common.Address{}) {
		b.log.Warn("Account factory returned zero address", slog.String("certificateID", id.String()))
		return common.Address{}, fmt.Errorf("%w: factory returned zero address", interfaces.ErrBindingFailed)
	}

	b.log.Debug("Bound account provisioned",
		slog.String("certificateID", id.String()),
		slog.String("account", account.Hex()),
		slog.Duration("duration", time.Since(start)))

	return account, nil
}

// TokenContract returns the registry address used in every request.
func (b *Binder) TokenContract() common.Address {
	return b.tokenContract
}

// Implementation returns the account implementation address.
func (b *Binder) Implementation() common.Address {
	return b.implementation
}

// ChainID returns a copy of the configured chain id.
func (b *Binder) ChainID() *big.Int {
	return new(big.Int).Set(b.chainID)
}
